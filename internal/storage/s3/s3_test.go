package s3

import (
	"testing"

	appconfig "github.com/eastern-erp/eastern-erp/internal/config"
)

func TestNew_RequiresBucket(t *testing.T) {
	_, err := New(&appconfig.S3StorageConfig{Region: "ap-south-1"})
	if err == nil {
		t.Error("expected error for missing bucket")
	}
}

func TestNew_RequiresRegion(t *testing.T) {
	_, err := New(&appconfig.S3StorageConfig{Bucket: "evidence"})
	if err == nil {
		t.Error("expected error for missing region")
	}
}

func TestNew_StaticAuthRequiresKeys(t *testing.T) {
	_, err := New(&appconfig.S3StorageConfig{
		Bucket:     "evidence",
		Region:     "ap-south-1",
		AuthMethod: "static",
	})
	if err == nil {
		t.Error("expected error for static auth without keys")
	}
}

func TestNew_UnsupportedAuthMethod(t *testing.T) {
	_, err := New(&appconfig.S3StorageConfig{
		Bucket:     "evidence",
		Region:     "ap-south-1",
		AuthMethod: "kerberos",
	})
	if err == nil {
		t.Error("expected error for unsupported auth method")
	}
}

func TestNew_AssumeRoleRequiresARN(t *testing.T) {
	_, err := New(&appconfig.S3StorageConfig{
		Bucket:     "evidence",
		Region:     "ap-south-1",
		AuthMethod: "assume_role",
	})
	if err == nil {
		t.Error("expected error for assume_role without role_arn")
	}
}

func TestNew_DefaultsToStaticWhenKeysProvided(t *testing.T) {
	s, err := New(&appconfig.S3StorageConfig{
		Bucket:          "evidence",
		Region:          "ap-south-1",
		AccessKeyID:     "AKIA123",
		SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s == nil {
		t.Fatal("expected storage instance")
	}
	if s.bucket != "evidence" {
		t.Errorf("bucket = %s, want evidence", s.bucket)
	}
}
