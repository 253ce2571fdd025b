package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/abdulehsan/Jarvis/internal/google"
	"github.com/abdulehsan/Jarvis/internal/server"
)

const (
	accountsURI        = "accounts://list"
	profileURIPrefix   = "accounts://"
	profileURISuffix   = "/profile"
	profileURITemplate = "accounts://{alias}/profile"
)

// ResourceAdder is implemented by *mcpserver.MCPServer.
type ResourceAdder interface {
	AddResource(resource mcp.Resource, handler mcpserver.ResourceHandlerFunc)
	AddResourceTemplate(template mcp.ResourceTemplate, handler mcpserver.ResourceTemplateHandlerFunc)
}

// RegisterAccountResources registers the account list and the per alias
// profile resources.
func RegisterAccountResources(s ResourceAdder, sc *server.ServerContext) error {
	accountsResource := mcp.NewResource(
		accountsURI,
		"Connected Accounts",
		mcp.WithResourceDescription("Aliases of the connected Google accounts and the account used for Google Keep"),
		mcp.WithMIMEType("application/json"),
	)
	s.AddResource(accountsResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleAccounts(request, sc)
	})

	profileTemplate := mcp.NewResourceTemplate(
		profileURITemplate,
		"Account Profile",
		mcp.WithTemplateDescription("Email address of the Google account behind an alias"),
		mcp.WithTemplateMIMEType("application/json"),
	)
	s.AddResourceTemplate(profileTemplate, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleProfile(ctx, request, sc)
	})

	return nil
}

type accountsData struct {
	Aliases     []string `json:"aliases"`
	KeepAccount string   `json:"keep_account,omitempty"`
}

func handleAccounts(request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	aliases, err := sc.Aliases()
	if err != nil {
		return nil, err
	}
	if aliases == nil {
		aliases = []string{}
	}
	return jsonContents(request.Params.URI, accountsData{
		Aliases:     aliases,
		KeepAccount: sc.Keep().Alias(),
	})
}

type profileData struct {
	Alias string `json:"alias"`
	Email string `json:"email"`
}

func handleProfile(ctx context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	alias, err := aliasFromProfileURI(request.Params.URI)
	if err != nil {
		return nil, err
	}

	client, err := sc.GmailClient(alias)
	if err != nil {
		return nil, err
	}
	email, err := client.Sender(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile for '%s': %w", alias, err)
	}

	return jsonContents(request.Params.URI, profileData{Alias: alias, Email: email})
}

func aliasFromProfileURI(uri string) (string, error) {
	if !strings.HasPrefix(uri, profileURIPrefix) || !strings.HasSuffix(uri, profileURISuffix) {
		return "", fmt.Errorf("unexpected profile URI %q", uri)
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(uri, profileURIPrefix), profileURISuffix)
	alias := google.NormalizeAlias(raw)
	if err := google.ValidateAlias(alias); err != nil {
		return "", err
	}
	return alias, nil
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
