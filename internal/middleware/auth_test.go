package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voiceunleashed/fluency/internal/domain/identity"
)

type fakeVerifier struct {
	valid map[string]*identity.User
}

func (f *fakeVerifier) Verify(ctx context.Context, idToken string) (*identity.User, error) {
	if u, ok := f.valid[idToken]; ok {
		return u, nil
	}
	return nil, identity.ErrUnauthenticated
}

func (f *fakeVerifier) DeleteAccount(ctx context.Context, idToken string) error { return nil }

func TestBearerAuth(t *testing.T) {
	verifier := &fakeVerifier{valid: map[string]*identity.User{
		"good": {ID: "u1", Email: "a@b.co"},
	}}

	var gotUser *identity.User
	var gotToken string
	handler := BearerAuth(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = GetUserFromContext(r.Context())
		gotToken = GetTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bare bearer", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer good", http.StatusOK},
		{"valid without bearer prefix", "good", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser, gotToken = nil, ""
			req := httptest.NewRequest(http.MethodGet, "/api/chat-history", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if gotUser == nil || gotUser.ID != "u1" {
					t.Errorf("user in context = %+v", gotUser)
				}
				if gotToken != "good" {
					t.Errorf("token in context = %q", gotToken)
				}
			} else if gotUser != nil {
				t.Error("handler ran despite failed auth")
			}
		})
	}
}
