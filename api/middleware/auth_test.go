package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/stretchr/testify/assert"
)

type fakeVerifier struct {
	tokens map[string]*fbauth.Token
}

func (v *fakeVerifier) VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error) {
	if token, ok := v.tokens[idToken]; ok {
		return token, nil
	}
	return nil, errors.New("ID token has expired")
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetUserID(r.Context()) + "|" + GetUserName(r.Context())))
	})
}

func TestFirebaseAuth(t *testing.T) {
	verifier := &fakeVerifier{tokens: map[string]*fbauth.Token{
		"good":     {UID: "uid-1", Claims: map[string]interface{}{"name": "Alice"}},
		"nameless": {UID: "uid-2", Claims: map[string]interface{}{}},
	}}
	handler := FirebaseAuth(verifier)(echoUser())

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"valid token", "Bearer good", http.StatusOK, "uid-1|Alice"},
		{"lowercase scheme", "bearer good", http.StatusOK, "uid-1|Alice"},
		{"no name claim", "Bearer nameless", http.StatusOK, "uid-2|"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic good", http.StatusUnauthorized, ""},
		{"empty token", "Bearer ", http.StatusUnauthorized, ""},
		{"rejected token", "Bearer forged", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			} else {
				assert.JSONEq(t, `{"success":false,"error":"`+errorMessageFor(tt.header)+`"}`, rec.Body.String())
			}
		})
	}
}

func errorMessageFor(header string) string {
	if header == "Bearer forged" {
		return "Invalid or expired token"
	}
	return "Authorization header required"
}

func TestFirebaseAuth_Unconfigured(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req.Header.Set("Authorization", "Bearer good")

	FirebaseAuth(nil)(echoUser()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestWithUserID(t *testing.T) {
	ctx := WithUserID(context.Background(), "uid-9")
	assert.Equal(t, "uid-9", GetUserID(ctx))
	assert.Empty(t, GetUserID(context.Background()))
}
