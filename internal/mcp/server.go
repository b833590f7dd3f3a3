package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/paularlott/mcp"

	"github.com/hubspoke/hubd/internal/derive"
	"github.com/hubspoke/hubd/internal/log"
	"github.com/hubspoke/hubd/internal/model"
	"github.com/hubspoke/hubd/internal/storage"
)

// Server wraps the MCP server with network storage
type Server struct {
	mcpServer   *mcp.Server
	store       storage.Store
	bearerToken string
	rng         derive.Rand
	now         func() time.Time
}

// NewServer creates a new MCP server for hub-and-spoke network management
func NewServer(store storage.Store, bearerToken string) *Server {
	s := &Server{
		mcpServer:   mcp.NewServer("hubd", "1.0.0"),
		store:       store,
		bearerToken: bearerToken,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:         time.Now,
	}
	s.registerTools()
	return s
}

// registerTools registers all network management tools
func (s *Server) registerTools() {
	// Inventory tools

	s.mcpServer.RegisterTool(
		mcp.NewTool("subscription_list", "List all Azure subscriptions connected to the platform"),
		s.handleSubscriptionList,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("hub_list", "List hub virtual networks, optionally filtered by subscription",
			mcp.String("subscription_id", "Subscription ID to filter by"),
		),
		s.handleHubList,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("spoke_list", "List spoke virtual networks, optionally filtered by hub",
			mcp.String("hub_network_id", "Hub network ID to filter by"),
		),
		s.handleSpokeList,
	)

	// spoke_save - Create a spoke or update an existing one
	s.mcpServer.RegisterTool(
		mcp.NewTool("spoke_save", "Create a new spoke network or update an existing one. If id is provided and exists, it updates; otherwise creates new.",
			mcp.String("id", "Spoke network ID (if updating existing spoke)"),
			mcp.String("name", "Spoke network name", mcp.Required()),
			mcp.String("hub_network_id", "Hub network ID the spoke peers with"),
			mcp.String("address_space", "Address space in CIDR notation (e.g., 10.1.0.0/16)"),
			mcp.String("environment", "Environment (development, staging, production, security)"),
			mcp.String("resource_group_name", "Azure resource group name"),
			mcp.String("status", "Spoke status (active or inactive)"),
			mcp.String("compliance_status", "Compliance status (compliant, non-compliant, pending)"),
			mcp.String("monthly_cost", "Monthly cost in USD, as a decimal string"),
			mcp.String("data_transfer_tb", "Monthly data transfer in TB, as a decimal string"),
		),
		s.handleSpokeSave,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("policy_list", "List security policies, optionally filtered by network",
			mcp.String("network_id", "Network ID to filter by"),
			mcp.String("network_type", "Network type to filter by (hub or spoke)"),
		),
		s.handlePolicyList,
	)

	// Derived views

	s.mcpServer.RegisterTool(
		mcp.NewTool("dashboard_metrics", "Get the aggregated dashboard metrics for the whole estate"),
		s.handleDashboardMetrics,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("network_health", "Assess the health of the network estate and list detected issues"),
		s.handleNetworkHealth,
	)

	// ARM and cost tools

	s.mcpServer.RegisterTool(
		mcp.NewTool("arm_generate", "Generate an ARM deployment template for a spoke network",
			mcp.String("name", "Spoke network name", mcp.Required()),
			mcp.String("address_space", "Address space in CIDR notation", mcp.Required()),
			mcp.String("environment", "Environment (development, staging, production, security)", mcp.Required()),
		),
		s.handleARMGenerate,
	)

	s.mcpServer.RegisterTool(
		mcp.NewTool("cost_estimate", "Estimate the monthly cost of a set of Azure resources",
			mcp.ObjectArray("resources", "Resources to estimate",
				mcp.String("name", "Resource name", mcp.Required()),
				mcp.String("type", "Azure resource type (e.g., VirtualNetwork, PublicIPAddress)", mcp.Required()),
			),
		),
		s.handleCostEstimate,
	)
}

// HandleRequest handles MCP HTTP requests with optional bearer token authentication
func (s *Server) HandleRequest(w http.ResponseWriter, r *http.Request) {
	log.Debug("MCP request received", "method", r.Method, "path", r.URL.Path, "remote_addr", r.RemoteAddr)

	if s.bearerToken != "" {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			log.Warn("MCP request missing Authorization header", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Missing Authorization header", http.StatusUnauthorized)
			return
		}
		if !strings.HasPrefix(auth, "Bearer ") {
			log.Warn("MCP request invalid Authorization format", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid Authorization format", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		if token != s.bearerToken {
			log.Warn("MCP request invalid token", "remote_addr", r.RemoteAddr)
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}
	}

	s.mcpServer.HandleRequest(w, r)
}

// Inventory tool handlers

func (s *Server) handleSubscriptionList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	subs, err := s.store.ListSubscriptions()
	if err != nil {
		log.Error("MCP subscription list failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to list subscriptions: " + err.Error())
	}

	if len(subs) == 0 {
		return mcp.NewToolResponseText("No subscriptions found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d subscriptions:\n\n", len(subs)))
	for _, sub := range subs {
		result.WriteString(fmt.Sprintf("Name: %s\n", sub.Name))
		result.WriteString(fmt.Sprintf("ID: %d\n", sub.ID))
		result.WriteString(fmt.Sprintf("Azure ID: %s\n", sub.SubscriptionID))
		result.WriteString(fmt.Sprintf("Region: %s\n", sub.Region))
		result.WriteString(fmt.Sprintf("Status: %s\n\n", sub.Status))
	}

	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleHubList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	filter := &storage.HubNetworkFilter{}
	if v := req.StringOr("subscription_id", ""); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, mcp.NewToolErrorInvalidParams("subscription_id must be numeric")
		}
		filter.SubscriptionID = id
	}

	hubs, err := s.store.ListHubNetworks(filter)
	if err != nil {
		log.Error("MCP hub list failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to list hub networks: " + err.Error())
	}

	if len(hubs) == 0 {
		return mcp.NewToolResponseText("No hub networks found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d hub networks:\n\n", len(hubs)))
	for _, hub := range hubs {
		result.WriteString(fmt.Sprintf("Name: %s\n", hub.Name))
		result.WriteString(fmt.Sprintf("ID: %d\n", hub.ID))
		result.WriteString(fmt.Sprintf("Address Space: %s\n", hub.AddressSpace))
		result.WriteString(fmt.Sprintf("Location: %s\n", hub.Location))
		result.WriteString(fmt.Sprintf("Status: %s\n\n", hub.Status))
	}

	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleSpokeList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	filter := &storage.SpokeNetworkFilter{}
	if v := req.StringOr("hub_network_id", ""); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, mcp.NewToolErrorInvalidParams("hub_network_id must be numeric")
		}
		filter.HubNetworkID = id
	}

	spokes, err := s.store.ListSpokeNetworks(filter)
	if err != nil {
		log.Error("MCP spoke list failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to list spoke networks: " + err.Error())
	}

	if len(spokes) == 0 {
		return mcp.NewToolResponseText("No spoke networks found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d spoke networks:\n\n", len(spokes)))
	for _, spoke := range spokes {
		result.WriteString(s.formatSpokeSummary(&spoke))
		result.WriteString("\n")
	}

	return mcp.NewToolResponseText(result.String()), nil
}

func (s *Server) handleSpokeSave(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	name, err := req.String("name")
	if err != nil {
		log.Warn("MCP spoke save - missing name", "error", err)
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}

	log.Debug("MCP spoke save request", "name", name)

	if id := req.StringOr("id", ""); id != "" {
		spokeID, err := strconv.Atoi(id)
		if err != nil {
			return nil, mcp.NewToolErrorInvalidParams("id must be numeric")
		}
		return s.updateSpoke(spokeID, name, req)
	}

	spoke := &model.SpokeNetwork{
		Name:              name,
		AddressSpace:      req.StringOr("address_space", ""),
		Environment:       req.StringOr("environment", ""),
		ResourceGroupName: req.StringOr("resource_group_name", ""),
		Status:            req.StringOr("status", ""),
		ComplianceStatus:  req.StringOr("compliance_status", ""),
	}
	if v := req.StringOr("hub_network_id", ""); v != "" {
		hubID, err := strconv.Atoi(v)
		if err != nil {
			return nil, mcp.NewToolErrorInvalidParams("hub_network_id must be numeric")
		}
		spoke.HubNetworkID = hubID
	}
	if v := req.StringOr("monthly_cost", ""); v != "" {
		cost, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, mcp.NewToolErrorInvalidParams("monthly_cost must be a decimal number")
		}
		spoke.MonthlyCost = cost
	}
	if v := req.StringOr("data_transfer_tb", ""); v != "" {
		tb, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, mcp.NewToolErrorInvalidParams("data_transfer_tb must be a decimal number")
		}
		spoke.DataTransferTB = tb
	}

	spoke.ApplyDefaults()
	if err := spoke.Validate(); err != nil {
		return nil, mcp.NewToolErrorInvalidParams("invalid spoke: " + err.Error())
	}

	if err := s.store.CreateSpokeNetwork(spoke); err != nil {
		log.Error("MCP spoke creation failed", "error", err, "name", spoke.Name)
		return nil, mcp.NewToolErrorInternal("failed to create spoke network: " + err.Error())
	}

	log.Info("MCP spoke created successfully", "id", spoke.ID, "name", spoke.Name)
	return mcp.NewToolResponseText(fmt.Sprintf("Spoke network created: %s (ID: %d)", spoke.Name, spoke.ID)), nil
}

func (s *Server) updateSpoke(id int, name string, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	upd := &model.SpokeNetworkUpdate{Name: &name}
	if v := req.StringOr("address_space", ""); v != "" {
		upd.AddressSpace = &v
	}
	if v := req.StringOr("environment", ""); v != "" {
		upd.Environment = &v
	}
	if v := req.StringOr("resource_group_name", ""); v != "" {
		upd.ResourceGroupName = &v
	}
	if v := req.StringOr("status", ""); v != "" {
		upd.Status = &v
	}
	if v := req.StringOr("compliance_status", ""); v != "" {
		upd.ComplianceStatus = &v
	}
	if v := req.StringOr("monthly_cost", ""); v != "" {
		cost, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, mcp.NewToolErrorInvalidParams("monthly_cost must be a decimal number")
		}
		upd.MonthlyCost = &cost
	}
	if v := req.StringOr("data_transfer_tb", ""); v != "" {
		tb, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, mcp.NewToolErrorInvalidParams("data_transfer_tb must be a decimal number")
		}
		upd.DataTransferTB = &tb
	}

	spoke, err := s.store.UpdateSpokeNetwork(id, upd)
	if err != nil {
		log.Error("MCP spoke update failed", "error", err, "id", id)
		return nil, mcp.NewToolErrorInternal("failed to update spoke network: " + err.Error())
	}

	log.Info("MCP spoke updated successfully", "id", spoke.ID, "name", spoke.Name)
	return mcp.NewToolResponseText(fmt.Sprintf("Spoke network updated: %s (ID: %d)", spoke.Name, spoke.ID)), nil
}

func (s *Server) handlePolicyList(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	filter := &storage.PolicyFilter{
		NetworkType: req.StringOr("network_type", ""),
	}
	if v := req.StringOr("network_id", ""); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, mcp.NewToolErrorInvalidParams("network_id must be numeric")
		}
		filter.NetworkID = id
	}

	policies, err := s.store.ListSecurityPolicies(filter)
	if err != nil {
		log.Error("MCP policy list failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to list security policies: " + err.Error())
	}

	if len(policies) == 0 {
		return mcp.NewToolResponseText("No security policies found"), nil
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Found %d security policies:\n\n", len(policies)))
	for _, policy := range policies {
		result.WriteString(fmt.Sprintf("Name: %s\n", policy.Name))
		result.WriteString(fmt.Sprintf("ID: %d\n", policy.ID))
		result.WriteString(fmt.Sprintf("Type: %s\n", policy.PolicyType))
		result.WriteString(fmt.Sprintf("Network: %s %d\n", policy.NetworkType, policy.NetworkID))
		result.WriteString(fmt.Sprintf("Active: %t\n", policy.IsActive))
		if policy.Description != "" {
			result.WriteString(fmt.Sprintf("Description: %s\n", policy.Description))
		}
		result.WriteString("\n")
	}

	return mcp.NewToolResponseText(result.String()), nil
}

// Derived view handlers

func (s *Server) handleDashboardMetrics(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	hubs, spokes, policies, err := s.loadEstate()
	if err != nil {
		log.Error("MCP dashboard metrics failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to load network estate: " + err.Error())
	}

	metrics := derive.Dashboard(hubs, spokes, policies, s.rng, s.now())
	return jsonResponse(metrics)
}

func (s *Server) handleNetworkHealth(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	hubs, spokes, policies, err := s.loadEstate()
	if err != nil {
		log.Error("MCP network health failed", "error", err)
		return nil, mcp.NewToolErrorInternal("failed to load network estate: " + err.Error())
	}

	activeSpokes, activeHubs, activePolicies := 0, 0, 0
	for _, spoke := range spokes {
		if spoke.Status == "active" {
			activeSpokes++
		}
	}
	for _, hub := range hubs {
		if hub.Status == "active" {
			activeHubs++
		}
	}
	for _, policy := range policies {
		if policy.IsActive {
			activePolicies++
		}
	}

	live := derive.Live(activeSpokes, activeHubs, activePolicies, len(policies), s.rng, s.now())
	assessment := derive.Assess(spokes, policies, live, s.now())
	return jsonResponse(assessment)
}

// ARM and cost handlers

func (s *Server) handleARMGenerate(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	name, err := req.String("name")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("name is required: " + err.Error())
	}
	addressSpace, err := req.String("address_space")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("address_space is required: " + err.Error())
	}
	environment, err := req.String("environment")
	if err != nil {
		return nil, mcp.NewToolErrorInvalidParams("environment is required: " + err.Error())
	}

	template := derive.GenerateTemplate(derive.SpokeParams{
		Name:         name,
		AddressSpace: addressSpace,
		Environment:  environment,
	}, s.now())

	log.Info("MCP ARM template generated", "spoke", name)
	return jsonResponse(template)
}

func (s *Server) handleCostEstimate(ctx context.Context, req *mcp.ToolRequest) (*mcp.ToolResponse, error) {
	resourceObjs, err := req.ObjectSlice("resources")
	if err != nil || len(resourceObjs) == 0 {
		return nil, mcp.NewToolErrorInvalidParams("resources is required")
	}

	resources := make([]derive.ResourceSpec, 0, len(resourceObjs))
	for i, obj := range resourceObjs {
		spec := derive.ResourceSpec{}
		if name, ok := obj["name"].(string); ok && name != "" {
			spec.Name = name
		} else {
			return nil, mcp.NewToolErrorInvalidParams(fmt.Sprintf("resources[%d]: missing name", i))
		}
		if resType, ok := obj["type"].(string); ok && resType != "" {
			spec.Type = resType
		} else {
			return nil, mcp.NewToolErrorInvalidParams(fmt.Sprintf("resources[%d]: missing type", i))
		}
		resources = append(resources, spec)
	}

	estimate := derive.EstimateCost(resources, s.now())
	return jsonResponse(estimate)
}

// Utility functions

func (s *Server) loadEstate() ([]model.HubNetwork, []model.SpokeNetwork, []model.SecurityPolicy, error) {
	hubs, err := s.store.ListHubNetworks(nil)
	if err != nil {
		return nil, nil, nil, err
	}
	spokes, err := s.store.ListSpokeNetworks(nil)
	if err != nil {
		return nil, nil, nil, err
	}
	policies, err := s.store.ListSecurityPolicies(nil)
	if err != nil {
		return nil, nil, nil, err
	}
	return hubs, spokes, policies, nil
}

func (s *Server) formatSpokeSummary(spoke *model.SpokeNetwork) string {
	var result strings.Builder
	result.WriteString(fmt.Sprintf("Name: %s\n", spoke.Name))
	result.WriteString(fmt.Sprintf("ID: %d\n", spoke.ID))
	result.WriteString(fmt.Sprintf("Hub Network ID: %d\n", spoke.HubNetworkID))
	result.WriteString(fmt.Sprintf("Address Space: %s\n", spoke.AddressSpace))
	result.WriteString(fmt.Sprintf("Environment: %s\n", spoke.Environment))
	result.WriteString(fmt.Sprintf("Status: %s\n", spoke.Status))
	result.WriteString(fmt.Sprintf("Compliance: %s\n", spoke.ComplianceStatus))
	result.WriteString(fmt.Sprintf("Monthly Cost: $%.2f\n", spoke.MonthlyCost))
	result.WriteString(fmt.Sprintf("Data Transfer: %.3f TB\n", spoke.DataTransferTB))
	return result.String()
}

func jsonResponse(data interface{}) (*mcp.ToolResponse, error) {
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, mcp.NewToolErrorInternal("failed to encode response: " + err.Error())
	}
	return mcp.NewToolResponseText(string(body)), nil
}

// GetHTTPHandler returns the HTTP handler for the MCP server
func (s *Server) GetHTTPHandler() http.HandlerFunc {
	return s.HandleRequest
}

// LogStartup logs MCP server startup information
func (s *Server) LogStartup() {
	log.Info("MCP Server initialized", "version", "1.0.0")
	if s.bearerToken != "" {
		log.Info("MCP authentication enabled", "type", "Bearer token")
	} else {
		log.Info("MCP authentication disabled")
	}
	tools := s.mcpServer.ListTools()
	log.Info("MCP tools registered", "count", len(tools))
	for _, tool := range tools {
		log.Debug("MCP tool registered", "name", tool.Name, "description", tool.Description)
	}
}
