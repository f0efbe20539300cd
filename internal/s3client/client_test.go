package s3client

import (
	"context"
	"testing"
)

func TestNewClientWithEndpointSetsFields(t *testing.T) {
	client := NewClientWithEndpoint("test-bucket", "us-east-1", "http://localhost:4566", nil)
	if client == nil {
		t.Fatal("NewClientWithEndpoint returned nil")
	}
	if client.bucket != "test-bucket" {
		t.Errorf("bucket = %q, want %q", client.bucket, "test-bucket")
	}
	if client.region != "us-east-1" {
		t.Errorf("region = %q, want %q", client.region, "us-east-1")
	}
	if client.endpoint != "http://localhost:4566" {
		t.Errorf("endpoint = %q, want %q", client.endpoint, "http://localhost:4566")
	}
}

func TestNewClientWithEndpointNilCredsFallsBackToChain(t *testing.T) {
	// A nil creds pointer must not panic; the client falls back to the
	// SDK's default credential provider chain.
	client := NewClientWithEndpoint("test-bucket", "us-east-1", "", nil)
	if client == nil {
		t.Fatal("NewClientWithEndpoint returned nil")
	}
}

func TestUninitializedClientOperationsFail(t *testing.T) {
	// s3Client is only populated when config.LoadDefaultConfig succeeds
	// against a real or local environment; against a bare Client value
	// every operation must report "not initialized" rather than panic.
	client := &Client{bucket: "test-bucket", region: "us-east-1"}
	ctx := context.Background()

	if _, err := client.ListObjects(ctx, "prefix/"); err == nil {
		t.Error("ListObjects on uninitialized client should fail")
	}
	if _, err := client.GetObject(ctx, "test-key"); err == nil {
		t.Error("GetObject on uninitialized client should fail")
	}
	if err := client.PutObject(ctx, "test-key", []byte("test data")); err == nil {
		t.Error("PutObject on uninitialized client should fail")
	}
	if err := client.CopyObject(ctx, "src-key", "dst-key"); err == nil {
		t.Error("CopyObject on uninitialized client should fail")
	}
	if err := client.DeleteObject(ctx, "test-key"); err == nil {
		t.Error("DeleteObject on uninitialized client should fail")
	}
}
