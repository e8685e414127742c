package balikobot_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/launchdarkly/go-test-helpers/v3/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/balikobot/pkg/balikobot"
	"github.com/tournevent/balikobot/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var jsonHeaders = http.Header{"Content-Type": {"application/json"}}

func TestHTTPRequester_Request(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithResponse(http.StatusOK, jsonHeaders, []byte(singlePackageEnvelope)),
	)

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		requester := balikobot.NewHTTPRequester(balikobot.HTTPRequesterConfig{
			APIUser: "api-user",
			APIKey:  "api-key",
		})

		payload := []shipper.PackageRequest{{"eid": "0001", "data": []int{1, 2, 3}, "test": false}}
		resp, err := requester.Request(context.Background(), server.URL+"/cp/add", payload)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, singlePackageEnvelope, string(resp.Body))

		info := <-requestsCh
		assert.Equal(t, http.MethodPost, info.Request.Method)
		assert.Equal(t, "/cp/add", info.Request.URL.Path)
		assert.Equal(t, "application/json", info.Request.Header.Get("Content-Type"))

		user, key, ok := info.Request.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "api-user", user)
		assert.Equal(t, "api-key", key)

		assert.JSONEq(t, `[{"eid": "0001", "data": [1, 2, 3], "test": false}]`, string(info.Body))
	})
}

func TestHTTPRequester_NilPayloadIsEmptyArray(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(http.StatusOK))

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		requester := balikobot.NewHTTPRequester(balikobot.HTTPRequesterConfig{})

		_, err := requester.Request(context.Background(), server.URL+"/cp/add", nil)
		require.NoError(t, err)

		info := <-requestsCh
		assert.Equal(t, "[]", string(info.Body))
	})
}

func TestHTTPRequester_NonSuccessStatusIsNotAnError(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(http.StatusUnauthorized, nil, []byte("Unauthorized"))

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		requester := balikobot.NewHTTPRequester(balikobot.HTTPRequesterConfig{})

		resp, err := requester.Request(context.Background(), server.URL+"/cp/add", nil)

		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "Unauthorized", string(resp.Body))
	})
}

func TestHTTPRequester_ConnectionError(t *testing.T) {
	server := httptest.NewServer(httphelpers.HandlerWithStatus(http.StatusOK))
	url := server.URL
	server.Close()

	requester := balikobot.NewHTTPRequester(balikobot.HTTPRequesterConfig{})
	_, err := requester.Request(context.Background(), url+"/cp/add", nil)

	assert.Error(t, err)
}

func TestClient_AddPackages_OverHTTP(t *testing.T) {
	handler, requestsCh := httphelpers.RecordingHandler(
		httphelpers.HandlerWithResponse(http.StatusOK, jsonHeaders, []byte(twoPackageEnvelope)),
	)

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		client := balikobot.New(balikobot.Config{
			APIUser: "api-user",
			APIKey:  "api-key",
			BaseURL: server.URL,
		}, otelzap.New(zap.NewNop()), nil)

		var labelsURL string
		packages := []shipper.PackageRequest{{"eid": "0001"}, {"eid": "0002"}}
		results, err := client.AddPackages(context.Background(), "ups", packages, balikobot.V2, &labelsURL)

		require.NoError(t, err)
		assert.Len(t, results, 2)
		assert.Equal(t, labelC, labelsURL)

		info := <-requestsCh
		assert.Equal(t, "/v2/ups/add", info.Request.URL.Path)
	})
}

func TestClient_AddPackages_OverHTTP_ServerError(t *testing.T) {
	handler := httphelpers.HandlerWithResponse(http.StatusServiceUnavailable, jsonHeaders, []byte(`{"status": 200}`))

	httphelpers.WithServer(handler, func(server *httptest.Server) {
		client := balikobot.New(balikobot.Config{BaseURL: server.URL}, otelzap.New(zap.NewNop()), nil)

		_, err := client.AddPackages(context.Background(), "cp", onePackage(), balikobot.VersionDefault, nil)

		var badReq *balikobot.BadRequestError
		require.True(t, errors.As(err, &badReq))
		assert.Equal(t, balikobot.ReasonTransportStatus, badReq.Reason)
		assert.True(t, badReq.Retryable())
	})
}
