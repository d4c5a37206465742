package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// The account cache must survive a JSON round trip with the password hash
// intact, or a warm cache would reject correct credentials; the API payload
// must still never carry the hash.
func TestUserCacheRoundTripKeepsPasswordHash(t *testing.T) {
	user := User{
		ID:       7,
		Username: "awa-zephyr",
		Password: "$2a$10$only-the-cache-sees-this",
		Role:     UserRoleStaff,
	}

	raw, err := json.Marshal(&cachedUser{User: user, PasswordHash: user.Password})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded cachedUser
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	restored := decoded.User
	restored.Password = decoded.PasswordHash

	if restored.Password != user.Password {
		t.Fatalf("hash lost in cache round trip: %q", restored.Password)
	}
	if restored.Username != user.Username || restored.Role != user.Role {
		t.Fatalf("account fields lost in cache round trip: %+v", restored)
	}
}

func TestUserAPIPayloadOmitsPassword(t *testing.T) {
	user := User{Username: "awa-zephyr", Password: "$2a$10$only-the-cache-sees-this"}
	raw, err := json.Marshal(&user)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(raw), "only-the-cache-sees-this") {
		t.Fatalf("password hash leaked into the API payload: %s", raw)
	}
}
