package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/bricesome/SoireClash/config"
	"github.com/bricesome/SoireClash/models"
	"github.com/bricesome/SoireClash/utils"
)

// seed-admin creates (or resets) the platform admin account. There is no
// self-serve path to the Admin role.
func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password; generated when empty")
	flag.Parse()

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	models.MigrateTable()

	plain := *password
	if plain == "" {
		plain = utils.GenerateRandomPassword(16)
	}
	hashed, err := utils.HashPassword(plain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	var existing models.User
	err = db.Where("username = ?", *username).Take(&existing).Error
	if err == nil {
		updates := map[string]interface{}{
			"password":  string(hashed),
			"role":      models.UserRoleAdmin,
			"is_active": true,
		}
		if *email != "" {
			updates["email"] = *email
		}
		if err := db.Model(&models.User{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to update admin: %v\n", err)
			os.Exit(1)
		}
		_ = existing.RemoveInstanceRedis()
		fmt.Printf("admin %q updated; password: %s\n", *username, plain)
		return
	}

	user := models.User{
		Username: *username,
		Name:     "Administrator",
		Password: string(hashed),
		Role:     models.UserRoleAdmin,
		IsActive: utils.NewTrue(),
	}
	if *email != "" {
		user.Email = email
	}
	if err := db.Create(&user).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to create admin: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("admin %q created; password: %s\n", *username, plain)
}
