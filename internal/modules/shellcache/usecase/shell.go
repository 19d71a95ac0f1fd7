package usecase

import (
	"context"
	"fmt"

	"worktime/internal/modules/shellcache/domain"
	"worktime/internal/modules/shellcache/dto"
	shellin "worktime/internal/modules/shellcache/port/in"
	"worktime/internal/modules/shellcache/service"
	apperrors "worktime/internal/platform/errors"
)

type Interactor struct {
	svc *service.ShellService
}

func NewInteractor(svc *service.ShellService) shellin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Install(ctx context.Context) (dto.InstallOutput, error) {
	report, err := i.svc.Install(ctx)
	if err != nil {
		return dto.InstallOutput{}, err
	}
	return dto.InstallOutput{Cache: i.svc.CacheName(), Stored: report.Stored, Skipped: report.Skipped}, nil
}

func (i *Interactor) Activate(ctx context.Context) (dto.ActivateOutput, error) {
	deleted, err := i.svc.Activate(ctx)
	if err != nil {
		return dto.ActivateOutput{}, err
	}
	return dto.ActivateOutput{Cache: i.svc.CacheName(), Deleted: deleted}, nil
}

func (i *Interactor) Fetch(ctx context.Context, input dto.FetchInput) (dto.FetchOutput, error) {
	if input.URL == "" {
		return dto.FetchOutput{}, fmt.Errorf("%w: url is required", apperrors.ErrInvalidInput)
	}
	resp, err := i.svc.Fetch(ctx, domain.Request{Method: input.Method, URL: input.URL, Header: input.Header, Body: input.Body})
	if err != nil {
		return dto.FetchOutput{}, err
	}
	return dto.FetchOutput{
		Status:      resp.Status,
		ContentType: resp.ContentType,
		Header:      resp.Header,
		Body:        resp.Body,
		FromCache:   resp.FromCache,
	}, nil
}

func (i *Interactor) Status(ctx context.Context) (dto.StatusOutput, error) {
	entries, err := i.svc.Entries(ctx)
	if err != nil {
		return dto.StatusOutput{}, err
	}
	return dto.StatusOutput{Cache: i.svc.CacheName(), Origin: i.svc.Origin(), Entries: entries, Assets: i.svc.AssetCount()}, nil
}
