package enrollment

import "time"

type Config struct {
	Issuer          string        `env:"ENROLL_ISSUER" envDefault:"mfakit"`       // Issuer is the service name shown in authenticator apps.
	SessionTTL      time.Duration `env:"ENROLL_SESSION_TTL" envDefault:"15m"`     // SessionTTL is how long a pending enrollment stays valid.
	SessionCapacity int           `env:"ENROLL_SESSION_CAPACITY" envDefault:"10000"` // SessionCapacity bounds the in-memory session store.
	BackupCodeCount int           `env:"ENROLL_BACKUP_CODES" envDefault:"10"`     // BackupCodeCount is the number of backup codes issued per enrollment.
	QRCodeSize      int           `env:"ENROLL_QR_SIZE" envDefault:"256"`         // QRCodeSize is the QR image size in pixels.
	MasterKey       string        `env:"MFA_MASTER_KEY,required"`                 // MasterKey is the base64 key encrypting TOTP secrets at rest.
}
