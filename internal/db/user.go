package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 定义了后台编辑账号
type User struct {
	gorm.Model
	Username    string `gorm:"size:64;uniqueIndex;not null"`
	Password    string `gorm:"not null"`
	DisplayName string `gorm:"size:120"`
	LastLoginAt *time.Time
}

// CheckPassword compares a plain password with the stored bcrypt hash.
func (u User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}

// HashPassword returns the bcrypt hash stored in User.Password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// EnsureUser 存在性检查：若提供的用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的用户。
func EnsureUser(gdb *gorm.DB, username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := HashPassword(trimmedPassword)
		if err != nil {
			return err
		}

		return gdb.Create(&User{Username: trimmedUser, Password: hashed, DisplayName: trimmedUser}).Error
	}

	return nil
}
