package dao

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"mygame/roulette/model"
)

// LoadStats 一次加载的结果统计
type LoadStats struct {
	Loaded  int
	Skipped int
}

// LoadFile 读取存档到 store；文件不存在不算错误，格式错误的行跳过
func LoadFile(path string, store *RecordStore) (LoadStats, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return LoadStats{}, nil
	}
	if err != nil {
		return LoadStats{}, fmt.Errorf("open account file: %w", err)
	}
	defer f.Close()

	return ReadRecords(f, store)
}

// ReadRecords 逐行解析并写入 store；不限制行长，超长行按格式错误跳过
func ReadRecords(r io.Reader, store *RecordStore) (LoadStats, error) {
	var stats LoadStats
	br := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return stats, fmt.Errorf("read account file: %w", err)
		}
		if text := strings.TrimRight(line, "\r\n"); text != "" {
			stats.add(store, lineNo, text)
		}
		if err != nil {
			return stats, nil
		}
	}
}

func (st *LoadStats) add(store *RecordStore, lineNo int, line string) {
	rec, err := model.ParseRecord(line)
	if err == nil {
		_, _, err = store.Put(rec)
	}
	if err != nil {
		log.Printf("Skipping account line %d: %s", lineNo, truncate(err.Error(), 120))
		st.Skipped++
		return
	}
	st.Loaded++
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// WriteRecords 按槽位顺序写出所有存活记录，墓碑不写
func WriteRecords(w io.Writer, store *RecordStore) error {
	bw := bufio.NewWriter(w)
	for _, slot := range store.table {
		if slot.State != SlotOccupied {
			continue
		}
		if _, err := bw.WriteString(slot.Record.Line() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// SaveFile 先写临时文件再 rename 覆盖 path
func SaveFile(path string, store *RecordStore) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create account dir: %w", err)
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create account file: %w", err)
	}
	if err := WriteRecords(f, store); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write account file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close account file: %w", err)
	}
	return os.Rename(tmp, path)
}
