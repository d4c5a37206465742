package models

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/bricesome/SoireClash/config"
	"github.com/bricesome/SoireClash/utils"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Username  string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name      string    `gorm:"size:100" json:"name"`
	Email     *string   `gorm:"size:100;unique" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('Admin','Owner','Staff','Participant','Unassigned');default:'Unassigned'" json:"role"`
	IsActive  *bool     `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

/*
caches:
	User:$username
	Tokens:$username (set)
	Token:$token
*/

func (user User) RemoveInstanceRedis() error {
	return config.RemoveRedisKey("User:" + user.Username)
}

// cachedUser is the redis shape of a User. Password carries `json:"-"` so the
// hash never leaks into an API payload, which also strips it from a plain
// marshal; the cache stores it under its own key so a warm cache can still
// verify credentials.
type cachedUser struct {
	User
	PasswordHash string `json:"password_hash"`
}

func cacheUser(user *User) {
	_ = config.SetRedisObject("User:"+user.Username, &cachedUser{
		User:         *user,
		PasswordHash: user.Password,
	}, time.Hour)
}

// getCachedUser returns the cached account with its password hash restored.
// Any cache trouble reads as a miss; callers fall back to the database.
func getCachedUser(username string) (*User, bool) {
	var cached cachedUser
	exists, err := config.GetRedisObject("User:"+username, &cached)
	if err != nil || !exists {
		return nil, false
	}
	user := cached.User
	user.Password = cached.PasswordHash
	return &user, true
}

type LoginInfo struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Role     UserRole `json:"role"`
}

type NewUser struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password" binding:"required"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {
	db := config.GetDB()
	var result LoginInfo

	cached, ok := getCachedUser(username)
	if !ok {
		var fromDb User
		err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&fromDb).Error
		if err != nil {
			return nil, errors.New("invalid username or password")
		}
		cacheUser(&fromDb)
		cached = &fromDb
	}
	user := *cached

	err := utils.ComparePassword(user.Password, password)
	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return nil, errors.New("invalid username or password")
	}
	if err != nil {
		return nil, err
	}
	if user.IsActive != nil && !*user.IsActive {
		return nil, errors.New("account is disabled")
	}

	token, err := utils.JwtGenerate(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, err
	}

	if err := config.SetRedisValue("Token:"+token, user.Username, 24*time.Hour); err != nil {
		return nil, err
	}
	if err := config.AddRedisSet("Tokens:"+user.Username, token); err != nil {
		return nil, err
	}

	result = LoginInfo{
		Token:    token,
		Username: user.Username,
		Name:     user.Name,
		Role:     user.Role,
	}
	return &result, nil
}

// destroy current session
func Logout(ctx context.Context) (bool, error) {
	token, ok := utils.GetTokenFromContext(ctx)
	if !ok || token == "" {
		return false, errors.New("token is required")
	}
	if err := config.RemoveRedisKey("Token:" + fmt.Sprint(token)); err != nil {
		return false, nil
	}
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return false, errors.New("user not found")
	}
	if err := config.RemoveRedisSetMember("Tokens:"+username, token); err != nil {
		return false, err
	}
	return true, nil
}

// RegisterUser creates a bettor account. Venue, staff and participant accounts
// are provisioned through the membership-approval flow instead.
func RegisterUser(ctx context.Context, input *NewUser) (*User, error) {
	db := config.GetDB()

	input.Username = html.EscapeString(strings.TrimSpace(input.Username))
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if input.Username == "" || input.Password == "" {
		return nil, errors.New("username and password are required")
	}
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return nil, errors.New("invalid email address")
	}

	// Check before insert so the submitter gets a clean message; the unique
	// index remains the backstop.
	var count int64
	dbCtx := db.WithContext(ctx).Model(&User{})
	if input.Email != "" {
		dbCtx = dbCtx.Where("username = ? OR email = ?", input.Username, input.Email)
	} else {
		dbCtx = dbCtx.Where("username = ?", input.Username)
	}
	if err := dbCtx.Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("duplicate username or email")
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := User{
		Username: input.Username,
		Name:     input.Name,
		Password: string(hashed),
		Role:     UserRoleUnassigned,
		IsActive: utils.NewTrue(),
	}
	if input.Email != "" {
		user.Email = &input.Email
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	user.PrepareGive()
	return &user, nil
}

func GetUserByUsername(ctx context.Context, username string) (*User, error) {
	db := config.GetDB()
	if cached, ok := getCachedUser(username); ok {
		return cached, nil
	}
	var user User
	if err := db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error; err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	cacheUser(&user)
	return &user, nil
}
