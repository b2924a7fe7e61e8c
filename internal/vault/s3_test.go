package vault

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestS3Vault_ObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{prefix: "", want: "snapshot/db"},
		{prefix: "hoard", want: "hoard/snapshot/db"},
		{prefix: "hoard/", want: "hoard/snapshot/db"},
		{prefix: "a/b", want: "a/b/snapshot/db"},
	}
	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			v := &S3Vault{prefix: tt.prefix}
			if got := v.objectKey(ItemDatabase); got != tt.want {
				t.Errorf("objectKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewS3Vault(t *testing.T) {
	ctx := context.Background()

	if _, err := NewS3Vault(ctx, "test", S3Config{}); err == nil {
		t.Error("NewS3Vault() without bucket error = nil")
	}

	v, err := NewS3Vault(ctx, "test", S3Config{
		Bucket:          "snapshots",
		Prefix:          "hoard",
		Endpoint:        "http://localhost:9000",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	if err != nil {
		t.Fatalf("NewS3Vault() error = %v", err)
	}
	if v.bucket != "snapshots" {
		t.Errorf("bucket = %q, want %q", v.bucket, "snapshots")
	}
	if v.uploader == nil {
		t.Error("uploader not initialised")
	}
}

func TestIsS3NotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "no such key", err: &types.NoSuchKey{}, want: true},
		{name: "not found", err: &types.NotFound{}, want: true},
		{name: "wrapped", err: errors.Join(errors.New("get"), &types.NoSuchKey{}), want: true},
		{name: "other", err: errors.New("access denied"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isS3NotFound(tt.err); got != tt.want {
				t.Errorf("isS3NotFound() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCountingReader(t *testing.T) {
	c := &countingReader{r: strings.NewReader("hello world")}
	buf := make([]byte, 4)
	for {
		if _, err := c.Read(buf); err != nil {
			break
		}
	}
	if c.n != 11 {
		t.Errorf("n = %d, want 11", c.n)
	}
}
