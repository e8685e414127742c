package balikobot_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/balikobot/pkg/balikobot"
	"github.com/tournevent/balikobot/pkg/balikobot/mocks"
	"github.com/tournevent/balikobot/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

const (
	labelA = "https://pdf.balikobot.cz/cp/eNorMTIwt9A1NbYwMwdcMBAZAoA."
	labelB = "https://pdf.balikobot.cz/cp/eNorMTIwt9A1NbYwMwdcMBAZAoB."
	labelC = "https://pdf.balikobot.cz/cp/eNorMTIwt9A1NbYwMwdcMBAZAoC."

	singlePackageEnvelope = `{
		"status": 200,
		"0": {
			"carrier_id": "NP1504102246M",
			"package_id": "42719",
			"label_url": "` + labelA + `",
			"status": "200"
		}
	}`

	twoPackageEnvelope = `{
		"status": 200,
		"labels_url": "` + labelC + `",
		"0": {
			"carrier_id": "NP1504102246M",
			"package_id": "42719",
			"label_url": "` + labelA + `",
			"status": "200"
		},
		"1": {
			"carrier_id": "NP1504102247M",
			"package_id": "42720",
			"label_url": "` + labelB + `",
			"status": "200"
		}
	}`
)

func newTestClient(t *testing.T) (*balikobot.Client, *mocks.MockRequester) {
	t.Helper()

	ctrl := gomock.NewController(t)
	requester := mocks.NewMockRequester(ctrl)
	logger := otelzap.New(zap.NewNop())

	return balikobot.NewWithRequester(balikobot.Config{}, requester, logger, nil), requester
}

func respond(status int, body string) *balikobot.Response {
	return &balikobot.Response{StatusCode: status, Body: []byte(body)}
}

func onePackage() []shipper.PackageRequest {
	return []shipper.PackageRequest{{"eid": 1}}
}

func requireReason(t *testing.T, err error, reason balikobot.Reason) *balikobot.BadRequestError {
	t.Helper()

	require.Error(t, err)
	assert.True(t, errors.Is(err, balikobot.ErrBadRequest))
	assert.True(t, errors.Is(err, reason), "expected reason %s, got %v", reason, err)

	var badReq *balikobot.BadRequestError
	require.True(t, errors.As(err, &badReq))
	return badReq
}

func TestClient_AddPackages_TransportError(t *testing.T) {
	client, requester := newTestClient(t)
	requester.EXPECT().
		Request(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(respond(http.StatusBadRequest, `{"status": 200}`), nil)

	results, err := client.AddPackages(context.Background(), "cp", onePackage(), balikobot.VersionDefault, nil)

	assert.Nil(t, results)
	badReq := requireReason(t, err, balikobot.ReasonTransportStatus)
	assert.Equal(t, http.StatusBadRequest, badReq.StatusCode)
	assert.Equal(t, "cp", badReq.Carrier)
}

func TestClient_AddPackages_RequiresStatus(t *testing.T) {
	bodies := map[string]string{
		"empty array":  `[]`,
		"empty object": `{}`,
		"empty body":   ``,
		"not json":     `<html>oops</html>`,
		"null status":  `{"status": null, "0": {"package_id": "1", "status": "200"}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			client, requester := newTestClient(t)
			requester.EXPECT().
				Request(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(respond(http.StatusOK, body), nil)

			_, err := client.AddPackages(context.Background(), "cp", onePackage(), balikobot.VersionDefault, nil)

			requireReason(t, err, balikobot.ReasonMissingStatus)
		})
	}
}

func TestClient_AddPackages_BadStatusCode(t *testing.T) {
	client, requester := newTestClient(t)
	requester.EXPECT().
		Request(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(respond(http.StatusOK, `{
			"status": 400,
			"0": {
				"carrier_id": "NP1504102246M",
				"package_id": "42719",
				"label_url": "`+labelA+`",
				"status": "200"
			}
		}`), nil)

	_, err := client.AddPackages(context.Background(), "cp", onePackage(), balikobot.VersionDefault, nil)

	badReq := requireReason(t, err, balikobot.ReasonStatus)
	assert.Equal(t, 400, badReq.StatusCode)
}

func TestClient_AddPackages_NoReturnedPackageData(t *testing.T) {
	client, requester := newTestClient(t)
	requester.EXPECT().
		Request(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(respond(http.StatusOK, `{"status": 200, "0": {"status": 200}}`), nil)

	_, err := client.AddPackages(context.Background(), "cp", onePackage(), balikobot.VersionDefault, nil)

	badReq := requireReason(t, err, balikobot.ReasonMissingPackageData)
	assert.Equal(t, 0, badReq.Index)
}

func TestClient_AddPackages_BadResponseData(t *testing.T) {
	client, requester := newTestClient(t)
	requester.EXPECT().
		Request(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(respond(http.StatusOK, `{
			"status": 200,
			"0": {"package_id": "42719", "status": 200},
			"1": {"status": 200}
		}`), nil)

	packages := []shipper.PackageRequest{{"eid": 1}, {"eid": 2}}
	_, err := client.AddPackages(context.Background(), "cp", packages, balikobot.VersionDefault, nil)

	badReq := requireReason(t, err, balikobot.ReasonMissingPackageData)
	assert.Equal(t, 1, badReq.Index)
}

func TestClient_AddPackages_EntryWithoutStatus(t *testing.T) {
	client, requester := newTestClient(t)
	requester.EXPECT().
		Request(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(respond(http.StatusOK, `{"status": 200, "0": {"package_id": "42719"}}`), nil)

	_, err := client.AddPackages(context.Background(), "cp", onePackage(), balikobot.VersionDefault, nil)

	requireReason(t, err, balikobot.ReasonMissingPackageData)
}

func TestClient_AddPackages_EntryStatusIsPassedThrough(t *testing.T) {
	client, requester := newTestClient(t)
	requester.EXPECT().
		Request(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(respond(http.StatusOK, `{"status": 200, "0": {"carrier_id": "X", "package_id": "42719", "label_url": "u", "status": "503"}}`), nil)

	results, err := client.AddPackages(context.Background(), "cp", onePackage(), balikobot.VersionDefault, nil)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, shipper.PackageResult{
		"carrier_id": "X",
		"package_id": "42719",
		"label_url":  "u",
		"status":     "503",
	}, results[0])
}

func TestClient_AddPackages_WrongNumberOfPackages(t *testing.T) {
	t.Run("more than submitted", func(t *testing.T) {
		client, requester := newTestClient(t)
		requester.EXPECT().
			Request(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(respond(http.StatusOK, twoPackageEnvelope), nil)

		_, err := client.AddPackages(context.Background(), "cp", onePackage(), balikobot.VersionDefault, nil)

		badReq := requireReason(t, err, balikobot.ReasonPackageCount)
		assert.Equal(t, 2, badReq.Got)
		assert.Equal(t, 1, badReq.Want)
	})

	t.Run("fewer than submitted", func(t *testing.T) {
		client, requester := newTestClient(t)
		requester.EXPECT().
			Request(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(respond(http.StatusOK, singlePackageEnvelope), nil)

		packages := []shipper.PackageRequest{{"eid": 1}, {"eid": 2}}
		_, err := client.AddPackages(context.Background(), "cp", packages, balikobot.VersionDefault, nil)

		requireReason(t, err, balikobot.ReasonPackageCount)
	})
}

func TestClient_AddPackages_MakeRequest(t *testing.T) {
	client, requester := newTestClient(t)
	payload := []shipper.PackageRequest{{"data": []int{1, 2, 3}, "test": false}}

	requester.EXPECT().
		Request(gomock.Any(), "https://apiv2.balikobot.cz/cp/add", payload).
		Return(respond(http.StatusOK, singlePackageEnvelope), nil)

	_, err := client.AddPackages(context.Background(), "cp", payload, balikobot.VersionDefault, nil)

	require.NoError(t, err)
}

func TestClient_AddPackages_MakeV2Request(t *testing.T) {
	client, requester := newTestClient(t)
	payload := []shipper.PackageRequest{{"data": []int{1, 2, 3}, "test": false}}

	requester.EXPECT().
		Request(gomock.Any(), "https://apiv2.balikobot.cz/v2/ups/add", payload).
		Return(respond(http.StatusOK, singlePackageEnvelope), nil)

	_, err := client.AddPackages(context.Background(), "ups", payload, balikobot.V2, nil)

	require.NoError(t, err)
}

func TestClient_AddPackages_UnsupportedVersionFallsBack(t *testing.T) {
	client, requester := newTestClient(t)
	payload := []shipper.PackageRequest{{"data": []int{1, 2, 3}, "test": false}}

	requester.EXPECT().
		Request(gomock.Any(), "https://apiv2.balikobot.cz/cp/add", payload).
		Return(respond(http.StatusOK, singlePackageEnvelope), nil)

	_, err := client.AddPackages(context.Background(), "cp", payload, balikobot.Version("v4"), nil)

	require.NoError(t, err)
}

func TestClient_AddPackages_OnlyPackagesDataAreReturned(t *testing.T) {
	client, requester := newTestClient(t)
	requester.EXPECT().
		Request(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(respond(http.StatusOK, twoPackageEnvelope), nil)

	packages := []shipper.PackageRequest{{"eid": "0001"}, {"eid": "0002"}}
	results, err := client.AddPackages(context.Background(), "cp", packages, balikobot.VersionDefault, nil)

	require.NoError(t, err)
	assert.Equal(t, []shipper.PackageResult{
		{
			"carrier_id": "NP1504102246M",
			"package_id": "42719",
			"label_url":  labelA,
			"status":     "200",
		},
		{
			"carrier_id": "NP1504102247M",
			"package_id": "42720",
			"label_url":  labelB,
			"status":     "200",
		},
	}, results)
}

func TestClient_AddPackages_PreservesCarrierFields(t *testing.T) {
	client, requester := newTestClient(t)
	requester.EXPECT().
		Request(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(respond(http.StatusOK, `{
			"status": "200",
			"errors": [],
			"0": {
				"package_id": 42719,
				"status": 200,
				"track_url": "https://t.example/1",
				"pieces": [1, 2]
			}
		}`), nil)

	results, err := client.AddPackages(context.Background(), "ppl", onePackage(), balikobot.VersionDefault, nil)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, json.Number("42719"), results[0]["package_id"])
	assert.Equal(t, json.Number("200"), results[0]["status"])
	assert.Equal(t, "https://t.example/1", results[0]["track_url"])
	assert.Equal(t, []any{json.Number("1"), json.Number("2")}, results[0]["pieces"])
	assert.NotContains(t, results[0], "errors")
}

func TestClient_AddPackages_LabelsURL(t *testing.T) {
	client, requester := newTestClient(t)
	requester.EXPECT().
		Request(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(respond(http.StatusOK, twoPackageEnvelope), nil)

	var labelsURL string
	packages := []shipper.PackageRequest{{"eid": "0001"}, {"eid": "0002"}}
	_, err := client.AddPackages(context.Background(), "cp", packages, balikobot.VersionDefault, &labelsURL)

	require.NoError(t, err)
	assert.Equal(t, labelC, labelsURL)
}

func TestClient_AddPackages_LabelsURLAbsentLeavesSlotUntouched(t *testing.T) {
	client, requester := newTestClient(t)
	requester.EXPECT().
		Request(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(respond(http.StatusOK, singlePackageEnvelope), nil)

	labelsURL := "untouched"
	_, err := client.AddPackages(context.Background(), "cp", onePackage(), balikobot.VersionDefault, &labelsURL)

	require.NoError(t, err)
	assert.Equal(t, "untouched", labelsURL)
}

func TestClient_AddPackages_RequesterError(t *testing.T) {
	client, requester := newTestClient(t)
	requester.EXPECT().
		Request(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	_, err := client.AddPackages(context.Background(), "cp", onePackage(), balikobot.VersionDefault, nil)

	require.Error(t, err)
	assert.False(t, errors.Is(err, balikobot.ErrBadRequest))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestClient_AddPackages_EmptyCarrier(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.AddPackages(context.Background(), "", onePackage(), balikobot.VersionDefault, nil)

	assert.True(t, errors.Is(err, shipper.ErrCarrierNotFound))
}

func TestClient_CustomBaseURL(t *testing.T) {
	ctrl := gomock.NewController(t)
	requester := mocks.NewMockRequester(ctrl)
	client := balikobot.NewWithRequester(
		balikobot.Config{BaseURL: "https://sandbox.balikobot.test/"},
		requester,
		otelzap.New(zap.NewNop()),
		nil,
	)

	requester.EXPECT().
		Request(gomock.Any(), "https://sandbox.balikobot.test/cp/add", gomock.Any()).
		Return(respond(http.StatusOK, singlePackageEnvelope), nil)

	_, err := client.AddPackages(context.Background(), "cp", onePackage(), balikobot.VersionDefault, nil)

	require.NoError(t, err)
}

func TestClient_New_WithMock(t *testing.T) {
	client := balikobot.New(balikobot.Config{UseMock: true}, otelzap.New(zap.NewNop()), nil)

	var labelsURL string
	packages := []shipper.PackageRequest{{"eid": "0001"}, {"eid": "0002"}, {"eid": "0003"}}
	results, err := client.AddPackages(context.Background(), "cp", packages, balikobot.VersionDefault, &labelsURL)

	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		status, ok := r.Status()
		assert.True(t, ok)
		assert.Equal(t, 200, status)
	}
	assert.Contains(t, labelsURL, "/cp/")
}
