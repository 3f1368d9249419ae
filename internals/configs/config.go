package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

var (
	JWTSecret string

	PayMongoSecretKey     string
	PayMongoPublicKey     string
	PayMongoWebhookSecret string

	SolanaRecipientAddress string
	SolanaAmount           string
	SolanaNetwork          string

	AdminUsername     string
	AdminPasswordHash string
)

// Konstanta kiosk (jangan diubah runtime)
const (
	PaymentCurrency = "PHP"

	SolanaLabel   = "Helmet Sanitizer"
	SolanaMessage = "Payment for helmet sanitization service"
)

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			log.Println("✅ .env file berhasil dimuat!")
		}
	} else {
		log.Println("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	JWTSecret = GetEnv("JWT_SECRET")

	PayMongoSecretKey = GetEnv("PAYMONGO_SECRET_KEY")
	PayMongoPublicKey = GetEnv("PAYMONGO_PUBLIC_KEY")
	PayMongoWebhookSecret = GetEnv("PAYMONGO_WEBHOOK_SECRET")

	SolanaRecipientAddress = GetEnv("SOLANA_RECIPIENT_ADDRESS")
	SolanaAmount = GetEnv("SOLANA_AMOUNT", "0")
	SolanaNetwork = GetEnv("SOLANA_NETWORK", "devnet")

	AdminUsername = GetEnv("ADMIN_USERNAME", "admin")
	AdminPasswordHash = GetEnv("ADMIN_PASSWORD_HASH")

	if JWTSecret == "" {
		log.Println("❌ JWT_SECRET belum diset!")
	} else {
		log.Println("✅ JWT_SECRET berhasil dimuat.")
	}

	if PayMongoSecretKey == "" {
		log.Println("❌ PAYMONGO_SECRET_KEY belum diset!")
	} else {
		log.Println("✅ PAYMONGO_SECRET_KEY berhasil dimuat.")
	}

	if AdminPasswordHash == "" {
		log.Println("⚠️ ADMIN_PASSWORD_HASH belum diset, login admin akan selalu gagal")
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

// GetEnvInt membaca ENV integer dengan fallback default.
func GetEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// =======================
// KIOSK SETTINGS
// =======================

// PaymentAmountCentavos = harga satu siklus sanitasi (minor unit / centavo).
func PaymentAmountCentavos() int64 {
	return int64(GetEnvInt("PAYMENT_AMOUNT_CENTAVOS", 100)) // default ₱1.00
}

// SanitizeDuration = durasi siklus hardware sanitizer.
func SanitizeDuration() time.Duration {
	return time.Duration(GetEnvInt("SANITIZE_DURATION_SECONDS", 10)) * time.Second
}

// SanitizerGPIOPin = pin relay sanitizer (BCM numbering).
func SanitizerGPIOPin() int {
	return GetEnvInt("SANITIZER_GPIO_PIN", 18)
}

// IsProduction: gate untuk endpoint test/simulasi.
func IsProduction() bool {
	return GetEnv("KIOSK_ENV") == "production"
}
