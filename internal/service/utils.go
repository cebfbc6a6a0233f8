package service

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword 加密
func HashPassword(password string, cost int) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(bytes), err
}

// CheckPasswordHash 校验
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// MatchCredential 存储用的凭证比较：bcrypt 哈希走 bcrypt，其余按旧的明文比较
func MatchCredential(stored, given string) bool {
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		return CheckPasswordHash(given, stored)
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
