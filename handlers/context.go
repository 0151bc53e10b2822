package handlers

// contextKey, context.Value için özel key tipi.
// String key kullanmak paketler arası çakışmaya açıktır —
// kendi tipimiz namespace collision'ı önler.
type contextKey string

// UserContextKey, auth middleware'ının context'e koyduğu *models.User.
const UserContextKey contextKey = "user"
