package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/novavoice/nova-voice/internal/assessment"
)

func sampleRecords() []assessment.Record {
	created := time.Date(2026, 5, 2, 14, 30, 0, 0, time.UTC)
	return []assessment.Record{
		{
			ID: "a-1", ClinicName: "Test Ortho", DailyCalls: 40,
			ReceptionConfig: assessment.ReceptionMultitasking, MissedCallStrategy: assessment.StrategyNothing,
			LeadFollowUpTime: assessment.FollowUpNextDay, RunAds: true, AvgCaseValue: 4500,
			RiskScore: 100, PotentialRevenue: 117000, RiskLevel: assessment.RiskHigh, CreatedAt: created,
		},
		{
			ID: "a-2", ClinicName: "Calm Dental", DailyCalls: 10,
			ReceptionConfig: assessment.ReceptionDedicated, MissedCallStrategy: assessment.StrategyAnsweringService,
			LeadFollowUpTime: assessment.FollowUpUnder5Min, AvgCaseValue: 1000,
			RiskScore: 0, PotentialRevenue: 2000, RiskLevel: assessment.RiskLow, CreatedAt: created.Add(-time.Hour),
		},
	}
}

func TestRenderWorkbook(t *testing.T) {
	data, err := RenderWorkbook(sampleRecords())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Clinic", rows[0][2])
	assert.Equal(t, "Risk Level", rows[0][11])
	assert.Equal(t, "Test Ortho", rows[1][2])
	assert.Equal(t, "2026-05-02T14:30:00Z", rows[1][1])
	assert.Equal(t, "40", rows[1][3])
	assert.Equal(t, "117000", rows[1][10])
	assert.Equal(t, "HIGH", rows[1][11])
	assert.Equal(t, "LOW", rows[2][11])
}

func TestRenderWorkbook_Empty(t *testing.T) {
	data, err := RenderWorkbook(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

type mockS3Client struct {
	objects map[string][]byte
	putErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	body, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, errors.New("NoSuchKey: key not found")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestS3Archiver_ArchiveAndManifest(t *testing.T) {
	mock := newMockS3()
	archiver := NewS3Archiver(mock, "nova-exports", nil)
	now := time.Date(2026, 5, 3, 9, 15, 0, 0, time.UTC)

	key, err := archiver.Archive(context.Background(), []byte("xlsx"), ManifestEntry{Rows: 2}, now)
	require.NoError(t, err)
	assert.Equal(t, "exports/assessments-20260503T091500Z.xlsx", key)
	assert.Equal(t, []byte("xlsx"), mock.objects[key])

	_, err = archiver.Archive(context.Background(), []byte("xlsx2"), ManifestEntry{Rows: 5}, now.Add(time.Minute))
	require.NoError(t, err)

	manifest := string(mock.objects["exports/manifests/2026-05.jsonl"])
	lines := strings.Split(strings.TrimSpace(manifest), "\n")
	require.Len(t, lines, 2)
	var first ManifestEntry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, key, first.Key)
	assert.Equal(t, 2, first.Rows)
}

func TestS3Archiver_Disabled(t *testing.T) {
	archiver := NewS3Archiver(newMockS3(), "", nil)
	assert.False(t, archiver.Enabled())
	_, err := archiver.Archive(context.Background(), nil, ManifestEntry{}, time.Now())
	assert.ErrorIs(t, err, ErrArchiveDisabled)

	var nilArchiver *S3Archiver
	assert.False(t, nilArchiver.Enabled())
}

func seededReader(t *testing.T) *assessment.MemoryRepository {
	t.Helper()
	repo := assessment.NewMemoryRepository()
	for _, rec := range sampleRecords() {
		rec := rec
		require.NoError(t, repo.Insert(context.Background(), &rec))
	}
	return repo
}

func TestHandlerExport(t *testing.T) {
	h := NewHandler(seededReader(t), nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/admin/assessments/export.xlsx?risk_level=high", nil)
	rec := httptest.NewRecorder()
	h.Export(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ContentTypeXLSX, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "1", rec.Header().Get("X-Export-Rows"))

	f, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Test Ortho", rows[1][2])
}

func TestHandlerExport_BadFilter(t *testing.T) {
	h := NewHandler(seededReader(t), nil, nil)

	for _, q := range []string{"since=yesterday", "risk_level=extreme", "limit=-3"} {
		req := httptest.NewRequest(http.MethodGet, "/admin/assessments/export.xlsx?"+q, nil)
		rec := httptest.NewRecorder()
		h.Export(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestHandlerArchive(t *testing.T) {
	mock := newMockS3()
	h := NewHandler(seededReader(t), NewS3Archiver(mock, "nova-exports", nil), nil)
	h.now = func() time.Time { return time.Date(2026, 5, 3, 9, 15, 0, 0, time.UTC) }

	req := httptest.NewRequest(http.MethodPost, "/admin/assessments/export/archive?since=2026-05-01", nil)
	rec := httptest.NewRecorder()
	h.Archive(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp ArchiveResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "exports/assessments-20260503T091500Z.xlsx", resp.Key)
	assert.Equal(t, 2, resp.Rows)
	assert.NotEmpty(t, mock.objects[resp.Key])

	mock.putErr = errors.New("access denied")
	rec = httptest.NewRecorder()
	h.Archive(rec, httptest.NewRequest(http.MethodPost, "/admin/assessments/export/archive", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandlerArchive_Disabled(t *testing.T) {
	h := NewHandler(seededReader(t), nil, nil)
	rec := httptest.NewRecorder()
	h.Archive(rec, httptest.NewRequest(http.MethodPost, "/admin/assessments/export/archive", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestParseFilter(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?since=2026-04-01T00:00:00Z&risk_level=LOW&risk_level=medium&limit=20", nil)
	filter, err := ParseFilter(req)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), filter.Since)
	assert.Equal(t, []assessment.RiskLevel{assessment.RiskLow, assessment.RiskMedium}, filter.RiskLevels)
	assert.Equal(t, 20, filter.Limit)
}
