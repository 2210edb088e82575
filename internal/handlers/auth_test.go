package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"lm500_emulator/internal/service"
)

func TestAuthHandlers_SignUpAndSignIn(t *testing.T) {
	auth := &mockAuth{signUpID: 42, genTokenToken: "tok123"}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := do(r, http.MethodPost, "/auth/sign-up", `{"username":"u","password":"p"}`, "")
	assertCode(t, w, http.StatusOK)
	var m map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if int(m["id"].(float64)) != 42 || auth.lastSignUpUsername != "u" {
		t.Fatalf("unexpected sign-up response %v", m)
	}

	w = do(r, http.MethodPost, "/auth/sign-in", `{"username":"u","password":"p"}`, "")
	assertCode(t, w, http.StatusOK)
	_ = json.Unmarshal(w.Body.Bytes(), &m)
	if m["token"] != "tok123" {
		t.Fatalf("expected token tok123, got %v", m["token"])
	}

	assertCode(t, do(r, http.MethodPost, "/auth/sign-in", `{"username":1}`, ""), http.StatusBadRequest)
}

func TestAuthHandlers_Failures(t *testing.T) {
	cases := []struct {
		name string
		auth *mockAuth
		path string
		want int
	}{
		{"blank password", &mockAuth{signUpErr: service.ErrInvalidCredential}, "/auth/sign-up", http.StatusBadRequest},
		{"duplicate username", &mockAuth{signUpErr: errors.New("UNIQUE constraint failed")}, "/auth/sign-up", http.StatusConflict},
		{"wrong password", &mockAuth{genTokenErr: service.ErrInvalidPassword}, "/auth/sign-in", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&service.Service{Authorization: tc.auth})
			assertCode(t, do(r, http.MethodPost, tc.path, `{"username":"u","password":"p"}`, ""), tc.want)
		})
	}
}
