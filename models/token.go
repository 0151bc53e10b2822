package models

import "github.com/golang-jwt/jwt/v5"

// TokenClaims, access token JWT'sinin payload'ı.
//
// Sadece user_id taşır — middleware her request'te kullanıcıyı DB'den
// taze çeker, böylece silinen kullanıcının eski token'ı işe yaramaz.
//
// models paketinde tanımlıdır çünkü hem services hem middleware kullanır;
// iki paketin birbirine bağımlı olması yerine ikisi de models'e bağımlıdır.
type TokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}
