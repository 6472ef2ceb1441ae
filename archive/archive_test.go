package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFiles(t *testing.T, contents map[string]string) []string {
	t.Helper()
	dir := t.TempDir()
	var out []string
	for _, name := range []string{"Protocol_1_Org_Program_1.docx", "Consent_1_Org.docx"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(contents[name]), 0o644))
		out = append(out, p)
	}
	return out
}

func TestZip(t *testing.T) {
	files := writeFiles(t, map[string]string{
		"Protocol_1_Org_Program_1.docx": "protocol",
		"Consent_1_Org.docx":            "consent",
	})
	var buf bytes.Buffer
	require.NoError(t, Zip(&buf, files))

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "Protocol_1_Org_Program_1.docx", zr.File[0].Name)
	assert.Equal(t, zip.Deflate, zr.File[0].Method)

	rc, err := zr.File[1].Open()
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "consent", string(b))
}

func TestZipMissingFile(t *testing.T) {
	err := Zip(io.Discard, []string{filepath.Join(t.TempDir(), "missing.docx")})
	assert.Error(t, err)
}

func TestWriteZip(t *testing.T) {
	files := writeFiles(t, map[string]string{})
	dest := filepath.Join(t.TempDir(), "636.zip")
	require.NoError(t, WriteZip(dest, files))

	zr, err := zip.OpenReader(dest)
	require.NoError(t, err)
	defer zr.Close()
	assert.Len(t, zr.File, 2)

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary file is left behind")
}

func TestObjectKey(t *testing.T) {
	a, b := ObjectKey("protocols", "636"), ObjectKey("protocols", "636")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "protocols/636-"))
	assert.True(t, strings.HasSuffix(a, ".zip"))
	assert.False(t, strings.Contains(ObjectKey("", "1/2"), "/"))
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{Driver: "ftp"}.Validate())
	assert.Error(t, Config{Driver: DriverS3}.Validate())
	assert.Error(t, Config{Driver: DriverFilesystem}.Validate())
}

func TestNewStoreNone(t *testing.T) {
	s, err := NewStore(context.Background(), DefaultConfig())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestFSStore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Driver = DriverFilesystem
	cfg.Dir = t.TempDir()
	s, err := NewStore(context.Background(), cfg)
	require.NoError(t, err)

	loc, err := s.Put(context.Background(), "protocols/636.zip", strings.NewReader("zip"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Dir, "protocols", "636.zip"), loc)
	b, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "zip", string(b))

	_, err = s.Put(context.Background(), "protocols/636.zip", strings.NewReader("again"))
	assert.Error(t, err, "existing objects are not overwritten")

	for _, key := range []string{"", "../escape.zip", "/abs.zip"} {
		_, err := s.Put(context.Background(), key, strings.NewReader("x"))
		assert.Error(t, err, key)
	}
}

// fakeS3 records PutObject requests.
type fakeS3 struct {
	mu   sync.Mutex
	puts map[string]http.Header
	body map[string][]byte
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if req.Method != http.MethodPut {
		return &http.Response{StatusCode: http.StatusNotImplemented, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{}}, nil
	}
	b, _ := io.ReadAll(req.Body)
	f.puts[req.URL.Path] = req.Header.Clone()
	f.body[req.URL.Path] = b
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(bytes.NewReader(nil)), Header: http.Header{"Etag": {`"etag"`}}}, nil
}

func TestS3StorePut(t *testing.T) {
	rt := &fakeS3{puts: map[string]http.Header{}, body: map[string][]byte{}}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion("us-east-1"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String("https://mock.s3.local")
		o.HTTPClient = &http.Client{Transport: rt}
		o.UsePathStyle = true
	})
	store := newS3Store(client, S3Config{Bucket: "bkt"})

	url, err := store.Put(context.Background(), "protocols/636.zip", bytes.NewReader([]byte("hello")))
	require.NoError(t, err)
	assert.Contains(t, url, "https://mock.s3.local/bkt/protocols/636.zip")
	assert.Contains(t, url, "X-Amz-Signature")

	hdr, ok := rt.puts["/bkt/protocols/636.zip"]
	require.True(t, ok, "object uploaded under bucket and key")
	assert.Equal(t, "application/zip", hdr.Get("Content-Type"))
	assert.Contains(t, string(rt.body["/bkt/protocols/636.zip"]), "hello")
}

func TestNewS3StoreRequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{})
	assert.Error(t, err)
}
