package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/frahmantamala/star-supla/internal/transport"
)

const (
	pathLogin          = "Login"
	pathMe             = "Me"
	pathMyRoles        = "Me/Role"
	pathChangePassword = "Me/ChangePassword"
)

type Doer interface {
	Do(ctx context.Context, req transport.Request) (*transport.Envelope, error)
}

// API talks to the bespoke session endpoints.
type API struct {
	client Doer
}

func NewAPI(client Doer) *API {
	return &API{client: client}
}

// Login exchanges credentials for a session key.
func (a *API) Login(ctx context.Context, dto LoginDTO) (string, error) {
	env, err := a.client.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   pathLogin,
		Body:   dto,
	})
	if err != nil {
		return "", err
	}

	var token string
	if err := env.Decode(&token); err != nil {
		return "", err
	}
	if token == "" {
		return "", internal.NewParseError("Failed to parse server response", fmt.Errorf("login returned an empty session key"))
	}
	return token, nil
}

// Me returns the current user document as served.
func (a *API) Me(ctx context.Context) (json.RawMessage, error) {
	env, err := a.client.Do(ctx, transport.Request{Method: http.MethodGet, Path: pathMe})
	if err != nil {
		return nil, err
	}
	return env.Raw, nil
}

// MyRoles returns the permission set document, superadmin flag included.
func (a *API) MyRoles(ctx context.Context) (json.RawMessage, error) {
	env, err := a.client.Do(ctx, transport.Request{Method: http.MethodGet, Path: pathMyRoles})
	if err != nil {
		return nil, err
	}
	return env.Raw, nil
}

func (a *API) ChangeOwnPassword(ctx context.Context, password string) error {
	_, err := a.client.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   pathChangePassword,
		Body:   map[string]string{"password": password},
	})
	return err
}
