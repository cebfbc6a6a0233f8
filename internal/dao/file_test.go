package dao

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"mygame/roulette/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sortedRecords(s *RecordStore) []*model.Record {
	recs := s.Records()
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs
}

func TestSaveAndLoadFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accountBank.txt")

	s := NewRecordStore()
	for _, r := range []*model.Record{
		{ID: "alice", Credential: "a1", Wins: 10},
		{ID: "bob", Credential: "b2", Wins: 5, Losses: 5},
		{ID: "carol", Credential: "c3", Losses: 10},
		{ID: "dave", Credential: "d4", Wins: 1, Losses: 2},
	} {
		_, _, err := s.Put(r)
		require.NoError(t, err)
	}
	_, err := s.Remove("dave")
	require.NoError(t, err)

	require.NoError(t, SaveFile(path, s))

	loaded := NewRecordStore()
	stats, err := LoadFile(path, loaded)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Loaded: 3}, stats)
	assert.Equal(t, sortedRecords(s), sortedRecords(loaded))

	_, err = loaded.Lookup("dave")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadFile_Missing(t *testing.T) {
	s := NewRecordStore()
	_, _, err := s.Put(model.NewRecord("alice", "pw"))
	require.NoError(t, err)

	stats, err := LoadFile(filepath.Join(t.TempDir(), "nope.txt"), s)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{}, stats)
	assert.Equal(t, 1, s.Size())
}

func TestLoadFile_Directory(t *testing.T) {
	_, err := LoadFile(t.TempDir(), NewRecordStore())
	assert.Error(t, err)
}

func TestReadRecords_SkipsMalformedLines(t *testing.T) {
	in := strings.Join([]string{
		"alice a1 3 1",
		"",
		"garbage",
		"bob b2 x 1",
		"carol c3 0 0",
		"dave d4 -2 0",
		"alice a1 4 1",
	}, "\n") + "\n"

	s := NewRecordStore()
	stats, err := ReadRecords(strings.NewReader(in), s)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Loaded: 3, Skipped: 3}, stats)
	assert.Equal(t, 2, s.Size())

	// 重复的用户名以最后一行为准
	r, err := s.Lookup("alice")
	require.NoError(t, err)
	assert.Equal(t, 4, r.Wins)
}

func TestReadRecords_OverlongLineSkipped(t *testing.T) {
	in := "alice a1 3 1\n" + strings.Repeat("x", 70000) + "\nbob b2 1 1\n"

	s := NewRecordStore()
	stats, err := ReadRecords(strings.NewReader(in), s)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Loaded: 2, Skipped: 1}, stats)

	for _, id := range []string{"alice", "bob"} {
		_, err := s.Lookup(id)
		assert.NoError(t, err, id)
	}
}

func TestReadRecords_LastLineWithoutNewline(t *testing.T) {
	s := NewRecordStore()
	stats, err := ReadRecords(strings.NewReader("alice a1 3 1\r\nbob b2 1 1"), s)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Loaded: 2}, stats)
}

func TestReadRecords_WhitespaceInField(t *testing.T) {
	s := NewRecordStore()
	stats, err := ReadRecords(strings.NewReader("al\tice a1 3 1\nbob b2 1 1\n"), s)
	require.NoError(t, err)
	assert.Equal(t, LoadStats{Loaded: 1, Skipped: 1}, stats)
}

func TestWriteRecords_SkipsTombstones(t *testing.T) {
	s := NewRecordStore()
	for _, id := range []string{"alice", "bob", "carol"} {
		_, _, err := s.Put(model.NewRecord(id, "pw"))
		require.NoError(t, err)
	}
	_, err := s.Remove("bob")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, s))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	sort.Strings(lines)
	assert.Equal(t, []string{"alice pw 0 0", "carol pw 0 0"}, lines)
}

func TestWriteRecords_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, NewRecordStore()))
	assert.Empty(t, buf.String())
}

func TestSaveFile_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "accountBank.txt")
	s := NewRecordStore()
	_, _, err := s.Put(&model.Record{ID: "alice", Credential: "pw", Wins: 2, Losses: 1})
	require.NoError(t, err)

	require.NoError(t, SaveFile(path, s))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alice pw 2 1\n", string(content))
}

func TestSaveFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accountBank.txt")
	require.NoError(t, os.WriteFile(path, []byte("old old 1 1\nstale stale 0 0\n"), 0o644))

	s := NewRecordStore()
	_, _, err := s.Put(model.NewRecord("alice", "pw"))
	require.NoError(t, err)
	require.NoError(t, SaveFile(path, s))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alice pw 0 0\n", string(content))
}

func TestSaveFile_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	err := SaveFile(filepath.Join(blocker, "accountBank.txt"), NewRecordStore())
	assert.Error(t, err)
}
