package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// AdminPasswordHeader carries the shared admin secret.
const AdminPasswordHeader = "X-Admin-Password"

// RequireAdmin пропускает запрос только с верным X-Admin-Password.
// Секрет задаётся открытым текстом или bcrypt-хешем (хеш приоритетнее).
// Если не задано ни то, ни другое, проверка отключена.
func RequireAdmin(password, passwordHash string) func(http.Handler) http.Handler {
	check := adminChecker(password, passwordHash)

	return func(next http.Handler) http.Handler {
		if check == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(AdminPasswordHeader)
			if got == "" {
				writeMessage(w, http.StatusUnauthorized, "Admin password required")
				return
			}
			if !check(got) {
				sugar.Warnw("Admin: wrong password", "method", r.Method, "uri", r.RequestURI, "remote", r.RemoteAddr)
				writeMessage(w, http.StatusForbidden, "Invalid admin password")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AdminEnabled reports whether RequireAdmin would enforce anything.
func AdminEnabled(password, passwordHash string) bool {
	return adminChecker(password, passwordHash) != nil
}

func adminChecker(password, passwordHash string) func(string) bool {
	switch {
	case passwordHash != "":
		hash := []byte(passwordHash)
		return func(got string) bool {
			return bcrypt.CompareHashAndPassword(hash, []byte(got)) == nil
		}
	case password != "":
		want := []byte(password)
		return func(got string) bool {
			return subtle.ConstantTimeCompare(want, []byte(got)) == 1
		}
	}
	return nil
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
