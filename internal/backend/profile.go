package backend

import (
	"context"
	"net/http"

	"github.com/nikolayk812/pharmacy-storefront/internal/domain"
)

func (c *Client) GetCallerProfile(ctx context.Context) (domain.UserProfile, bool, error) {
	dto, found, err := getOne[profileDTO](ctx, c, "GetCallerProfile", "/profile")
	if err != nil || !found {
		return domain.UserProfile{}, false, err
	}

	return mapProfileToDomain(dto), true, nil
}

func (c *Client) SaveCallerProfile(ctx context.Context, profile domain.UserProfile) error {
	return c.do(ctx, request{
		op:     "SaveCallerProfile",
		method: http.MethodPut,
		path:   "/profile",
		body:   mapProfileFromDomain(profile),
	}, nil)
}

func (c *Client) GetCallerRole(ctx context.Context) (domain.UserRole, error) {
	dto, err := get[roleDTO](ctx, c, "GetCallerRole", "/profile/role", nil)
	if err != nil {
		return "", err
	}

	return domain.UserRole(dto.Role), nil
}

func (c *Client) IsCallerAdmin(ctx context.Context) (bool, error) {
	dto, err := get[isAdminDTO](ctx, c, "IsCallerAdmin", "/profile/is-admin", nil)
	if err != nil {
		return false, err
	}

	return dto.IsAdmin, nil
}
