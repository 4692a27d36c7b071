package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kouichiii/paper-manager/internal/service"
)

func (s *Server) registerPaperRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createPaper",
		Method:        http.MethodPost,
		Path:          "/api/papers",
		Summary:       "Create paper",
		Description:   "Creates a new paper with status UNREAD and no tags",
		Tags:          []string{"Papers"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreatePaper)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPapers",
		Method:      http.MethodGet,
		Path:        "/api/papers",
		Summary:     "List papers",
		Description: "Returns a filtered, paginated page of papers, newest first",
		Tags:        []string{"Papers"},
	}, s.handleListPapers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPaper",
		Method:      http.MethodGet,
		Path:        "/api/papers/{id}",
		Summary:     "Get paper",
		Description: "Returns a paper by ID",
		Tags:        []string{"Papers"},
	}, s.handleGetPaper)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePaper",
		Method:      http.MethodPatch,
		Path:        "/api/papers/{id}",
		Summary:     "Update paper",
		Description: "Partially updates title, authors, year, or url",
		Tags:        []string{"Papers"},
	}, s.handleUpdatePaper)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPaperStatus",
		Method:      http.MethodPatch,
		Path:        "/api/papers/{id}/status",
		Summary:     "Set paper status",
		Description: "Sets the reading status to UNREAD, READING, or DONE",
		Tags:        []string{"Papers"},
	}, s.handleSetPaperStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "addPaperTag",
		Method:      http.MethodPost,
		Path:        "/api/papers/{id}/tags",
		Summary:     "Add tag",
		Description: "Attaches a tag to a paper, creating the tag on first use",
		Tags:        []string{"Papers"},
	}, s.handleAddPaperTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "removePaperTag",
		Method:        http.MethodDelete,
		Path:          "/api/papers/{id}/tags/{tag}",
		Summary:       "Remove tag",
		Description:   "Detaches a tag from a paper; the tag itself is kept",
		Tags:          []string{"Papers"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleRemovePaperTag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deletePaper",
		Method:        http.MethodDelete,
		Path:          "/api/papers/{id}",
		Summary:       "Delete paper",
		Description:   "Deletes a paper and its tag associations",
		Tags:          []string{"Papers"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeletePaper)
}

// === DTOs ===

// CreatePaperRequest is the request body for creating a paper.
type CreatePaperRequest struct {
	Title   string `json:"title" doc:"Paper title"`
	Authors string `json:"authors,omitempty" doc:"Author list as free text"`
	Year    *int   `json:"year,omitempty" doc:"Publication year"`
	URL     string `json:"url,omitempty" doc:"Link to the paper"`
}

// CreatePaperInput wraps the create paper request for Huma.
type CreatePaperInput struct {
	Body CreatePaperRequest
}

// PaperOutput wraps a single paper row for Huma.
type PaperOutput struct {
	Body service.PaperRow
}

// ListPapersInput contains search and pagination parameters.
type ListPapersInput struct {
	Page   int      `query:"page" minimum:"0" default:"0" doc:"Zero-based page index"`
	Size   int      `query:"size" minimum:"1" maximum:"200" default:"10" doc:"Items per page"`
	Query  string   `query:"q" doc:"Case-insensitive substring match on title or authors"`
	Status string   `query:"status" doc:"Filter by reading status"`
	Tags   []string `query:"tags,explode" doc:"Filter by tag names; a paper matches if it has any of them"`
}

// PageOutput wraps the list response envelope for Huma.
type PageOutput struct {
	Body service.PageResult
}

// GetPaperInput contains parameters for fetching a paper.
type GetPaperInput struct {
	ID int64 `path:"id" doc:"Paper ID"`
}

// UpdatePaperRequest is the request body for a partial update.
// Absent keys leave the corresponding field unchanged.
type UpdatePaperRequest struct {
	Title   *string `json:"title,omitempty" doc:"Paper title"`
	Authors *string `json:"authors,omitempty" doc:"Author list as free text"`
	Year    *int    `json:"year,omitempty" doc:"Publication year"`
	URL     *string `json:"url,omitempty" doc:"Link to the paper"`
}

// UpdatePaperInput wraps the update paper request for Huma.
type UpdatePaperInput struct {
	ID   int64 `path:"id" doc:"Paper ID"`
	Body UpdatePaperRequest
}

// StatusRequest is the request body for a status change.
type StatusRequest struct {
	Status string `json:"status" doc:"New reading status, case-insensitive"`
}

// SetPaperStatusInput wraps the status request for Huma.
type SetPaperStatusInput struct {
	ID   int64 `path:"id" doc:"Paper ID"`
	Body StatusRequest
}

// TagRequest is the request body for attaching a tag.
type TagRequest struct {
	Tag string `json:"tag" doc:"Tag name; lowercased before storage"`
}

// AddPaperTagInput wraps the tag request for Huma.
type AddPaperTagInput struct {
	ID   int64 `path:"id" doc:"Paper ID"`
	Body TagRequest
}

// RemovePaperTagInput contains parameters for detaching a tag.
type RemovePaperTagInput struct {
	ID  int64  `path:"id" doc:"Paper ID"`
	Tag string `path:"tag" doc:"Tag name; lowercased before lookup"`
}

// DeletePaperInput contains parameters for deleting a paper.
type DeletePaperInput struct {
	ID int64 `path:"id" doc:"Paper ID"`
}

// === Handlers ===

func (s *Server) handleCreatePaper(ctx context.Context, input *CreatePaperInput) (*PaperOutput, error) {
	row, err := s.papers.Create(ctx, service.CreatePaperInput{
		Title:   input.Body.Title,
		Authors: input.Body.Authors,
		Year:    input.Body.Year,
		URL:     input.Body.URL,
	})
	if err != nil {
		return nil, err
	}

	return &PaperOutput{Body: *row}, nil
}

func (s *Server) handleListPapers(ctx context.Context, input *ListPapersInput) (*PageOutput, error) {
	page, err := s.papers.List(ctx, service.ListPapersInput{
		Page:   input.Page,
		Size:   input.Size,
		Query:  input.Query,
		Status: input.Status,
		Tags:   input.Tags,
	})
	if err != nil {
		return nil, err
	}

	return &PageOutput{Body: *page}, nil
}

func (s *Server) handleGetPaper(ctx context.Context, input *GetPaperInput) (*PaperOutput, error) {
	row, err := s.papers.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &PaperOutput{Body: *row}, nil
}

func (s *Server) handleUpdatePaper(ctx context.Context, input *UpdatePaperInput) (*PaperOutput, error) {
	row, err := s.papers.Update(ctx, input.ID, service.UpdatePaperInput{
		Title:   input.Body.Title,
		Authors: input.Body.Authors,
		Year:    input.Body.Year,
		URL:     input.Body.URL,
	})
	if err != nil {
		return nil, err
	}

	return &PaperOutput{Body: *row}, nil
}

func (s *Server) handleSetPaperStatus(ctx context.Context, input *SetPaperStatusInput) (*PaperOutput, error) {
	row, err := s.papers.SetStatus(ctx, input.ID, input.Body.Status)
	if err != nil {
		return nil, err
	}

	return &PaperOutput{Body: *row}, nil
}

func (s *Server) handleAddPaperTag(ctx context.Context, input *AddPaperTagInput) (*PaperOutput, error) {
	row, err := s.papers.AddTag(ctx, input.ID, input.Body.Tag)
	if err != nil {
		return nil, err
	}

	return &PaperOutput{Body: *row}, nil
}

func (s *Server) handleRemovePaperTag(ctx context.Context, input *RemovePaperTagInput) (*struct{}, error) {
	if err := s.papers.RemoveTag(ctx, input.ID, input.Tag); err != nil {
		return nil, err
	}

	return nil, nil
}

func (s *Server) handleDeletePaper(ctx context.Context, input *DeletePaperInput) (*struct{}, error) {
	if err := s.papers.Delete(ctx, input.ID); err != nil {
		return nil, err
	}

	return nil, nil
}
