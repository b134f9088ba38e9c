package catalog

import "github.com/bissquit/incident-conductor/internal/domain"

// Default returns the built-in catalog.
func Default() *Catalog {
	return &Catalog{
		Scenarios: []Scenario{
			{
				Title:           "Database Connection Pool Exhaustion - Production MySQL",
				Description:     "Production MySQL database experiencing connection pool exhaustion with applications unable to establish new connections.",
				Severity:        domain.SeverityCritical,
				AffectedSystems: []string{"mysql-prod-01", "mysql-prod-02", "app-servers-pool"},
				IncidentType:    "database",
				RootCause:       "Connection pool exhaustion due to long-running queries and insufficient connection cleanup",
			},
			{
				Title:           "DDoS Attack Detected - Main Web Application",
				Description:     "Distributed Denial of Service attack targeting main web application. Traffic spike: 50,000 requests/second.",
				Severity:        domain.SeverityCritical,
				AffectedSystems: []string{"web-app-prod", "load-balancer-01", "cdn-endpoints"},
				IncidentType:    "security",
				RootCause:       "Coordinated DDoS attack using botnet across multiple geographic regions",
			},
			{
				Title:           "Kubernetes Pod Crash Loop - Microservices",
				Description:     "Critical microservices experiencing crash loop backoff in Kubernetes cluster. Pod restart count exceeded threshold.",
				Severity:        domain.SeverityHigh,
				AffectedSystems: []string{"k8s-cluster-prod", "user-service", "order-service"},
				IncidentType:    "container",
				RootCause:       "Memory limits too restrictive for current workload causing OOMKilled events",
			},
			{
				Title:           "Network Switch Stack Failure - Data Center",
				Description:     "Core network switch stack failure in primary data center causing network segmentation across VLANs.",
				Severity:        domain.SeverityCritical,
				AffectedSystems: []string{"core-switch-stack", "vlan-infrastructure", "inter-dc-links"},
				IncidentType:    "network",
				RootCause:       "Switch stack master election failure due to firmware bug and split-brain condition",
			},
			{
				Title:           "API Rate Limit Exceeded - Payment Integration",
				Description:     "Third-party payment API rate limits exceeded causing transaction failures. 95% of payment requests failing.",
				Severity:        domain.SeverityHigh,
				AffectedSystems: []string{"payment-service", "checkout-api", "billing-system"},
				IncidentType:    "api",
				RootCause:       "Inefficient API call patterns and missing request throttling mechanisms",
			},
		},

		Teams: map[string]string{
			"database":       "Database Engineering",
			"security":       "Security Operations Center",
			"network":        "Network Operations Team",
			"infrastructure": "Infrastructure Engineering",
			"container":      "Platform Engineering",
			"storage":        "Storage Engineering",
			"api":            "API Platform Team",
			"dns":            "Network Operations",
			"authentication": "Identity & Access Management",
		},
		FallbackTeam: "General Operations",

		Engineers: map[string][]string{
			"database":       {"Sarah Chen (DB Architect)", "Marcus Rodriguez (Sr. DBA)", "Priya Patel (DB Performance)"},
			"security":       {"Alex Thompson (Security Lead)", "Jordan Kim (Incident Response)", "Riley Foster (Threat Analysis)"},
			"network":        {"David Wilson (Network Architect)", "Maya Singh (Sr. Network Engineer)", "Chris Anderson (NOC Lead)"},
			"infrastructure": {"Sam Parker (Infrastructure Lead)", "Jessica Liu (Cloud Architect)", "Tyler Brown (SRE)"},
			"container":      {"Morgan Davis (K8s Expert)", "Casey Johnson (Platform Lead)", "Avery Taylor (DevOps)"},
		},
		FallbackPool: []string{"Jamie Smith (Sr. Engineer)", "Taylor Jones (Operations)", "Cameron Lee (Specialist)"},

		Classifications: map[string]Classification{
			"database":       {Category: "Database Services", Subcategory: "Performance Degradation"},
			"security":       {Category: "Security Incident", Subcategory: "Threat Response"},
			"network":        {Category: "Network Infrastructure", Subcategory: "Connectivity Issues"},
			"infrastructure": {Category: "Infrastructure", Subcategory: "System Outage"},
			"container":      {Category: "Platform Services", Subcategory: "Container Orchestration"},
			"api":            {Category: "Application Services", Subcategory: "API Gateway"},
		},

		ResolutionEstimates: map[string]string{
			"database":       "2-4 hours",
			"security":       "1-6 hours (depends on scope)",
			"network":        "1-3 hours",
			"infrastructure": "2-6 hours",
			"container":      "1-2 hours",
			"api":            "1-2 hours",
		},

		TypeStakeholders: map[string][]string{
			"security": {"security-team@company.com", "compliance@company.com", "legal@company.com"},
			"database": {"dba-team@company.com", "backend-developers@company.com"},
			"network":  {"network-ops@company.com", "telecom@company.com"},
			"container": {"platform-team@company.com", "devops@company.com", "sre@company.com"},
		},

		CommunicationStrategies: map[string]string{
			"security":       "Security incident communication protocol with legal and compliance review",
			"database":       "Database incident communication with application teams and business stakeholders",
			"network":        "Network outage communication with all affected teams and external partners",
			"infrastructure": "Infrastructure incident communication with service owners and customers",
			"container":      "Container platform communication with development teams and product owners",
		},

		RemediationActions: map[string][]string{
			"database": {
				"connection_pool_scaling_and_optimization",
				"query_performance_analysis_and_tuning",
				"database_replica_failover_activation",
				"connection_cleanup_and_monitoring",
			},
			"security": {
				"immediate_system_isolation_and_containment",
				"credential_rotation_and_access_review",
				"security_patch_deployment_and_hardening",
				"threat_monitoring_enhancement",
			},
			"network": {
				"traffic_rerouting_and_load_distribution",
				"redundant_path_activation",
				"network_hardware_replacement",
				"routing_table_optimization",
			},
			"container": {
				"pod_restart_and_rescheduling",
				"resource_limit_increase_and_optimization",
				"kubernetes_node_scaling",
				"container_image_update_and_security_scan",
			},
		},
		DefaultActions: []string{
			"service_restart_and_health_verification",
			"resource_scaling_and_optimization",
			"configuration_review_and_reset",
			"monitoring_enhancement_and_alerting",
		},

		RemediationStrategies: map[string]string{
			"database":       "Database-first approach with connection optimization and query tuning",
			"security":       "Security-first containment with immediate isolation and threat mitigation",
			"network":        "Network-centric approach with traffic rerouting and redundancy activation",
			"container":      "Container orchestration optimization with resource scaling and health tuning",
			"infrastructure": "Infrastructure-wide approach with resource optimization and service recovery",
		},

		// Security and network remediation stays mostly manual.
		AutomationLevels: map[string]string{
			"container":      "high",
			"api":            "high",
			"infrastructure": "medium",
			"database":       "medium",
			"network":        "low",
			"security":       "low",
		},

		HealthyChecks: map[string]map[string]string{
			"database": {
				"connection_pool":   "Optimal (420/500 connections)",
				"query_performance": "Baseline restored (<45ms avg)",
				"cpu_utilization":   "Normal (42%)",
				"memory_usage":      "Stable (58%)",
			},
			"security": {
				"threat_level":       "Green (Low Risk)",
				"access_controls":    "Active and Verified",
				"monitoring_systems": "Enhanced and Operational",
				"compliance_status":  "Compliant",
			},
			"network": {
				"latency":               "Optimal (6ms avg)",
				"packet_loss":           "None (0%)",
				"bandwidth_utilization": "Normal (65%)",
				"redundancy_status":     "Active",
			},
			"container": {
				"pod_status":           "All Pods Running and Ready",
				"resource_utilization": "Optimal",
				"cluster_health":       "Healthy",
				"service_mesh":         "Operational",
			},
		},
		DegradedChecks: map[string]map[string]string{
			"database": {
				"connection_pool":   "Elevated usage (465/500)",
				"query_performance": "Improved but monitoring (85ms avg)",
				"cpu_utilization":   "Moderate (68%)",
				"memory_usage":      "Elevated (74%)",
			},
			"security": {
				"threat_level":       "Yellow (Elevated)",
				"access_controls":    "Active with Enhanced Monitoring",
				"monitoring_systems": "Enhanced with Continuous Review",
				"compliance_status":  "Under Review",
			},
		},
	}
}
