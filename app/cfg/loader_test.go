package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestSetAndGet(t *testing.T) {
	c := &Cfg{
		Port:         "8080",
		DBPath:       "./test.db",
		BaseUrl:      "https://blog.example.com",
		WorkerCount:  2,
		HubUrl:       "https://pubsubhubbub.appspot.com",
		LeaseSeconds: 86400,
		UserAgent:    "Test Agent",
		APIAccessKey: "test-key",
		Debug:        true,
	}

	Set(c)

	got := Get()
	if got.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", got.Port)
	}
	if got.BaseUrl != "https://blog.example.com" {
		t.Errorf("Expected base URL 'https://blog.example.com', got '%s'", got.BaseUrl)
	}
	if got.WorkerCount != 2 {
		t.Errorf("Expected worker count 2, got %d", got.WorkerCount)
	}
	if got.LeaseSeconds != 86400 {
		t.Errorf("Expected lease seconds 86400, got %d", got.LeaseSeconds)
	}
	if got.HubUrl != "https://pubsubhubbub.appspot.com" {
		t.Errorf("Expected default hub URL, got '%s'", got.HubUrl)
	}
	if !got.Debug {
		t.Error("Expected debug to be enabled")
	}
}
