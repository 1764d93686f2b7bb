package grpcserver

import (
	"context"
	"sort"

	"github.com/nmxmxh/desktop-automation-service/api/uiautomationpb"
	"github.com/nmxmxh/desktop-automation-service/internal/platform"
	"github.com/nmxmxh/desktop-automation-service/pkg/apierror"
	"github.com/nmxmxh/desktop-automation-service/pkg/names"
	"github.com/nmxmxh/desktop-automation-service/pkg/pagination"
	"google.golang.org/grpc/codes"
)

// Displays have no cached registry (spec §4.4 caches windows, not displays);
// every call queries the adapter fresh, since display configuration changes
// rarely enough that staleness isn't a latency concern worth a cache for.

func toDisplay(d platform.DisplayInfo) *uiautomationpb.Display {
	return &uiautomationpb.Display{
		Name:         "displays/" + d.DisplayID,
		GlobalFrame:  uiautomationpb.Rect(d.GlobalFrame),
		VisibleFrame: uiautomationpb.Rect(d.VisibleFrame),
		Scale:        d.Scale,
		IsMain:       d.IsMain,
	}
}

func (s *Server) GetDisplay(ctx context.Context, req *uiautomationpb.GetDisplayRequest) (*uiautomationpb.Display, error) {
	id, err := names.ParseDisplayName(req.Name)
	if err != nil {
		return nil, err
	}
	all, err := s.Sys.ListDisplays(ctx)
	if err != nil {
		return nil, apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
			"failed to list displays", err, nil)
	}
	for _, d := range all {
		if d.DisplayID == id {
			return applyDisplayReadMask(toDisplay(d), req.ReadMask), nil
		}
	}
	return nil, apierror.New(codes.NotFound, apierror.ReasonDisplayNotFound,
		"display not found", map[string]string{"name": req.Name})
}

func (s *Server) ListDisplays(ctx context.Context, req *uiautomationpb.ListDisplaysRequest) (*uiautomationpb.ListDisplaysResponse, error) {
	all, err := s.Sys.ListDisplays(ctx)
	if err != nil {
		return nil, apierror.Wrap(codes.Internal, apierror.ReasonAdapterFailure,
			"failed to list displays", err, nil)
	}
	displays := make([]*uiautomationpb.Display, len(all))
	for i, d := range all {
		displays[i] = toDisplay(d)
	}
	sort.Slice(displays, func(i, j int) bool { return displays[i].Name < displays[j].Name })

	offset, err := pagination.DecodeOrZero(req.PageToken)
	if err != nil {
		return nil, err
	}
	size := pagination.ResolvePageSize(req.PageSize, pagination.DefaultPageSize)
	page, next := pagination.Page(displays, offset, size)
	return &uiautomationpb.ListDisplaysResponse{Displays: page, NextPageToken: next}, nil
}
