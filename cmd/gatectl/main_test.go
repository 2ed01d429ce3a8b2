package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusURL_EscapesIDs(t *testing.T) {
	u := statusURL("http://gate:8080", "create_tariff", "clinic a&b", "svc/1")

	assert.Equal(t,
		"http://gate:8080/v1/requirements/status?action=create_tariff&clinicId=clinic+a%26b&serviceId=svc%2F1",
		u)
}

func TestStatusURL_OmitsEmptyService(t *testing.T) {
	u := statusURL("http://gate:8080", "create_service", "c1", "")

	assert.NotContains(t, u, "serviceId")
}

func TestProgressURL_EscapesClinic(t *testing.T) {
	u := progressURL("http://gate:8080", "c 1")

	assert.Equal(t, "http://gate:8080/v1/onboarding/progress?clinicId=c+1", u)
}

func TestCheckURL_EscapesAction(t *testing.T) {
	u := checkURL("http://gate:8080", "create service")

	assert.Equal(t, "http://gate:8080/v1/guard/create%20service/check", u)
}
