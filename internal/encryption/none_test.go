package encryption

import (
	"bytes"
	"testing"

	"hoard/internal/config"
)

func TestNoneEncryptor_RoundTrip(t *testing.T) {
	t.Parallel()

	var e Encryptor = NoneEncryptor{}
	if err := e.Setup("ignored"); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if !e.IsConfigured() {
		t.Error("IsConfigured() = false, want true")
	}

	input := []byte("plain snapshot")
	var out bytes.Buffer
	if err := e.Encrypt(bytes.NewReader(input), &out); err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if !bytes.Equal(out.Bytes(), input) {
		t.Errorf("Encrypt() = %q, want plaintext %q", out.Bytes(), input)
	}

	dc, err := e.Unlock("")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	var back bytes.Buffer
	if err := dc.Decrypt(bytes.NewReader(out.Bytes()), &back); err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(back.Bytes(), input) {
		t.Errorf("Decrypt() = %q, want %q", back.Bytes(), input)
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.EncryptionConfig
		want    string
		wantErr bool
	}{
		{
			name: "age",
			cfg:  config.EncryptionConfig{Type: "age", PublicKeyPath: "/k/hoard.pub", PrivateKeyPath: "/k/hoard.key"},
			want: "age",
		},
		{
			name: "default is age",
			cfg:  config.EncryptionConfig{PublicKeyPath: "/k/hoard.pub", PrivateKeyPath: "/k/hoard.key"},
			want: "age",
		},
		{name: "age without key paths", cfg: config.EncryptionConfig{Type: "age"}, wantErr: true},
		{name: "none", cfg: config.EncryptionConfig{Type: "none"}, want: "none"},
		{name: "unknown", cfg: config.EncryptionConfig{Type: "rot13"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewEncryptorFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewEncryptorFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			switch got.(type) {
			case *AgeEncryptor:
				if tt.want != "age" {
					t.Errorf("NewEncryptorFromConfig() = %T, want %s", got, tt.want)
				}
			case NoneEncryptor:
				if tt.want != "none" {
					t.Errorf("NewEncryptorFromConfig() = %T, want %s", got, tt.want)
				}
			default:
				t.Errorf("NewEncryptorFromConfig() = %T", got)
			}
		})
	}
}
