// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package confluence

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Page is a page with its storage-format body and version.
type Page struct {
	ID      string      `json:"id"`
	Type    string      `json:"type"`
	Title   string      `json:"title"`
	Version PageVersion `json:"version"`
	Body    PageBody    `json:"body"`
}

// PageVersion is the version block of a page.
type PageVersion struct {
	Number  int    `json:"number"`
	Message string `json:"message,omitempty"`
}

// PageBody holds the storage representation.
type PageBody struct {
	Storage StorageValue `json:"storage"`
}

// StorageValue is a body in a named representation.
type StorageValue struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

// GetPage fetches a page with its storage body and version.
func (client *Client) GetPage(ctx context.Context, id string) (*Page, error) {
	var page Page
	if err := client.get(ctx, "/rest/api/content/"+url.PathEscape(id)+"?expand=body.storage,version", &page); err != nil {
		return nil, fmt.Errorf("getting page %s: %w", id, err)
	}
	return &page, nil
}

type updatePageRequest struct {
	Version PageVersion `json:"version"`
	Title   string      `json:"title"`
	Type    string      `json:"type"`
	Body    PageBody    `json:"body"`
}

// UpdatePage replaces the storage body. version is the new version
// number, one more than the current.
func (client *Client) UpdatePage(ctx context.Context, id, title, body string, version int, message string) error {
	request := updatePageRequest{
		Version: PageVersion{Number: version, Message: message},
		Title:   title,
		Type:    "page",
		Body: PageBody{Storage: StorageValue{
			Value:          body,
			Representation: "storage",
		}},
	}
	if err := client.send(ctx, http.MethodPut, "/rest/api/content/"+url.PathEscape(id), request, nil); err != nil {
		return fmt.Errorf("updating page %s: %w", id, err)
	}
	return nil
}
