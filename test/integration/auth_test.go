//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"go-taskboard/internal/model"
)

func TestAuthFlow(t *testing.T) {
	stores := map[string]func(t *testing.T) string{
		"memory":   func(*testing.T) string { return "" },
		"postgres": startPostgres,
	}

	for name, databaseURL := range stores {
		t.Run(name, func(t *testing.T) {
			server := newServer(t, databaseURL(t))
			base := server.URL + "/api/v1/auth"

			resp, env := postJSON(t, base+"/register", map[string]string{"email": "Ann@Example.com", "password": "secret123"})
			require.Equal(t, http.StatusCreated, resp.StatusCode)
			registered := tokensFrom(t, env)
			require.Equal(t, "ann@example.com", registered.User.Email)

			resp, env = postJSON(t, base+"/register", map[string]string{"email": "ann@example.com", "password": "another123"})
			require.Equal(t, http.StatusConflict, resp.StatusCode)
			require.Equal(t, "ALREADY_EXISTS", env.Error.Code)

			resp, env = postJSON(t, base+"/login", map[string]string{"email": "ann@example.com", "password": "secret123"})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			loggedIn := tokensFrom(t, env)

			_, unknown := postJSON(t, base+"/login", map[string]string{"email": "bob@example.com", "password": "secret123"})
			_, wrong := postJSON(t, base+"/login", map[string]string{"email": "ann@example.com", "password": "not-it-123"})
			require.Equal(t, unknown.Error, wrong.Error)
			require.Equal(t, "INVALID_CREDENTIALS", wrong.Error.Code)

			resp, env = postJSON(t, base+"/refresh", map[string]string{"refresh_token": loggedIn.RefreshToken})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			refreshed := tokensFrom(t, env)
			require.Equal(t, registered.User, refreshed.User)

			resp, env = getWithToken(t, base+"/me", refreshed.AccessToken)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var me model.AuthUser
			require.NoError(t, json.Unmarshal(env.Data, &me))
			require.Equal(t, registered.User, me)

			resp, env = getWithToken(t, base+"/me", refreshed.RefreshToken)
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			require.Equal(t, "INVALID_TOKEN", env.Error.Code)
		})
	}
}
