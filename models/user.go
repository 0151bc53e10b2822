// Package models, uygulamanın domain modellerini tanımlar.
//
// Her model veritabanındaki bir tablonun Go karşılığıdır ve aynı zamanda
// API'den giden verinin şeklini belirler. Request tipleri (Create*Request)
// frontend'den gelen veriyi taşır; Validate() metodları handler'da
// çağrılır, iş kuralları service katmanında kalır.
package models

import "time"

// User, OAuth provider üzerinden giriş yapmış bir kullanıcıyı temsil eder.
//
// Parola YOKTUR — kimlik tamamen identity provider'a aittir.
// Provider + Subject çifti kullanıcıyı benzersiz tanımlar: aynı kişi
// tekrar giriş yaptığında yeni satır açılmaz, mevcut satır güncellenir.
type User struct {
	ID          string    `json:"id"`
	Provider    string    `json:"-"` // ör: "google" — API yanıtına gerek yok
	Subject     string    `json:"-"` // Provider'ın verdiği kalıcı kullanıcı ID'si
	Email       *string   `json:"email"`        // *string = nullable
	DisplayName *string   `json:"display_name"`
	AvatarURL   *string   `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}
