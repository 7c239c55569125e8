package backup

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/wormkeeper/internal/logging"
)

func newTestService(t *testing.T, mirror Mirror) (*Service, string, string) {
	t.Helper()
	tmp := t.TempDir()
	usersDir := filepath.Join(tmp, "users")
	backupDir := filepath.Join(tmp, "backup")
	logger := logging.NewJSONLogger(io.Discard)
	return NewService(usersDir, backupDir, mirror, logger), usersDir, backupDir
}

func writeRecord(t *testing.T, dir, username, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o770))
	require.NoError(t, os.WriteFile(filepath.Join(dir, username+".json"), []byte(body), 0o660))
}

func readRecord(t *testing.T, dir, username string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(dir, username+".json"))
	require.NoError(t, err)
	return string(b)
}

func TestBackupAll_CopiesEveryRecord(t *testing.T) {
	svc, usersDir, backupDir := newTestService(t, nil)
	writeRecord(t, usersDir, "alice", `{"passwordHash":"a","data":{}}`)
	writeRecord(t, usersDir, "bob", `{"passwordHash":"b","data":{}}`)
	// non-record files are skipped
	require.NoError(t, os.WriteFile(filepath.Join(usersDir, "notes.txt"), []byte("x"), 0o660))

	count, err := svc.BackupAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Equal(t, `{"passwordHash":"a","data":{}}`, readRecord(t, backupDir, "alice"))
	assert.Equal(t, `{"passwordHash":"b","data":{}}`, readRecord(t, backupDir, "bob"))
	_, err = os.Stat(filepath.Join(backupDir, "notes.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestBackupAll_FailsWhenSourceUnlistable(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	_, err := svc.BackupAll(context.Background())
	require.Error(t, err, "missing live directory cannot be enumerated")
}

func TestBackupRestore_RoundTripRecoversCorruptedRecord(t *testing.T) {
	svc, usersDir, _ := newTestService(t, nil)
	writeRecord(t, usersDir, "alice", `{"passwordHash":"a","data":{"coins":5}}`)
	writeRecord(t, usersDir, "bob", `{"passwordHash":"b","data":{}}`)
	ctx := context.Background()

	count, err := svc.BackupAll(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	// corrupt one live record and delete the other
	writeRecord(t, usersDir, "alice", `{garbage`)
	require.NoError(t, os.Remove(filepath.Join(usersDir, "bob.json")))

	count, err = svc.RestoreAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Equal(t, `{"passwordHash":"a","data":{"coins":5}}`, readRecord(t, usersDir, "alice"))
	assert.Equal(t, `{"passwordHash":"b","data":{}}`, readRecord(t, usersDir, "bob"))
}

func TestRestoreAll_RecreatesLiveDirectory(t *testing.T) {
	svc, usersDir, backupDir := newTestService(t, nil)
	writeRecord(t, backupDir, "alice", `{"passwordHash":"a","data":{}}`)

	count, err := svc.RestoreAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, `{"passwordHash":"a","data":{}}`, readRecord(t, usersDir, "alice"))
}

func TestBackupAll_OverwritesPriorBackup(t *testing.T) {
	svc, usersDir, backupDir := newTestService(t, nil)
	ctx := context.Background()

	writeRecord(t, usersDir, "alice", `{"v":1}`)
	_, err := svc.BackupAll(ctx)
	require.NoError(t, err)

	writeRecord(t, usersDir, "alice", `{"v":2}`)
	_, err = svc.BackupAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, `{"v":2}`, readRecord(t, backupDir, "alice"))
}

type recordingMirror struct {
	mu      sync.Mutex
	uploads map[string]string
	err     error
}

func (m *recordingMirror) Upload(ctx context.Context, name string, body io.Reader) error {
	if m.err != nil {
		return m.err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploads == nil {
		m.uploads = make(map[string]string)
	}
	m.uploads[name] = buf.String()
	return nil
}

func TestBackupAll_PushesToMirror(t *testing.T) {
	mirror := &recordingMirror{}
	svc, usersDir, _ := newTestService(t, mirror)
	writeRecord(t, usersDir, "alice", `{"passwordHash":"a","data":{}}`)

	count, err := svc.BackupAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, `{"passwordHash":"a","data":{}}`, mirror.uploads["alice.json"])
}

func TestBackupAll_MirrorFailureDoesNotFailBackup(t *testing.T) {
	mirror := &recordingMirror{err: io.ErrClosedPipe}
	svc, usersDir, backupDir := newTestService(t, mirror)
	writeRecord(t, usersDir, "alice", `{"passwordHash":"a","data":{}}`)

	count, err := svc.BackupAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, `{"passwordHash":"a","data":{}}`, readRecord(t, backupDir, "alice"))
}
