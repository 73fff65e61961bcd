package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerSectionsResource(srv, svc)
	registerSectionTemplate(srv, svc)
	registerTaskTemplate(srv, svc)
	registerSuggestionResource(srv, svc)
}

func registerSectionsResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"adhdo://sections",
		"Sections",
		mcp.WithResourceDescription("Every task section in display order with counts."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		sections, err := svc.Sections(ctx, "")
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"sections": sections,
		})
	})
}

func registerSectionTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"adhdo://sections/{name}",
		"Section Tasks",
		mcp.WithTemplateDescription("Tasks in one section: void, today, tomorrow, week or later."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		name, _ := request.Params.Arguments["name"].(string)
		if name == "" {
			return nil, fmt.Errorf("section name is required")
		}
		sections, err := svc.Sections(ctx, name)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, sections[0])
	})
}

func registerTaskTemplate(srv *server.MCPServer, svc *Service) {
	template := mcp.NewResourceTemplate(
		"adhdo://tasks/{id}",
		"Task Details",
		mcp.WithTemplateDescription("Detailed information about a single task."),
		mcp.WithTemplateMIMEType("application/json"),
	)

	srv.AddResourceTemplate(template, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		id, _ := request.Params.Arguments["id"].(string)
		if id == "" {
			return nil, fmt.Errorf("task id is required")
		}
		dto, err := svc.TaskByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"task": dto,
		})
	})
}

func registerSuggestionResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"adhdo://suggestion",
		"Current Suggestion",
		mcp.WithResourceDescription("The one task to do right now."),
		mcp.WithMIMEType("application/json"),
	)

	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		sg, err := svc.Suggest(ctx, "")
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"suggestion": sg,
		})
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
