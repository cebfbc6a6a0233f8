package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Record 一个账号的战绩：用户名、凭证、胜场、负场
type Record struct {
	ID         string
	Credential string // 明文或 bcrypt 哈希，存储层不关心
	Wins       int
	Losses     int
}

// NewRecord 创建一个 0 胜 0 负的新账号
func NewRecord(id, credential string) *Record {
	return &Record{ID: id, Credential: credential}
}

// Games 总场次
func (r *Record) Games() int {
	return r.Wins + r.Losses
}

// WinRate 胜率 wins / (wins + losses)，没有对局时为 0
func (r *Record) WinRate() float64 {
	games := r.Games()
	if games == 0 {
		return 0
	}
	return float64(r.Wins) / float64(games)
}

// Win 赢下一局
func (r *Record) Win() {
	r.Wins++
}

// Lose 输掉一局
func (r *Record) Lose() {
	r.Losses++
}

// Clone 深拷贝，存储层和排行榜之间不共享指针
func (r *Record) Clone() *Record {
	c := *r
	return &c
}

func (r *Record) String() string {
	return fmt.Sprintf("%s\t\tWinrate: %.1f%%", r.ID, r.WinRate()*100)
}

// Line 序列化为存档文件的一行: <id> <credential> <wins> <losses>
func (r *Record) Line() string {
	return r.ID + " " + r.Credential + " " + strconv.Itoa(r.Wins) + " " + strconv.Itoa(r.Losses)
}

// ParseRecord 解析存档文件中的一行
func ParseRecord(line string) (*Record, error) {
	parts := strings.Split(strings.TrimRight(line, "\r\n"), " ")
	if len(parts) != 4 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: %q", ErrMalformedRecord, line)
	}

	wins, err := parseCounter(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: wins %q", ErrMalformedRecord, parts[2])
	}
	losses, err := parseCounter(parts[3])
	if err != nil {
		return nil, fmt.Errorf("%w: losses %q", ErrMalformedRecord, parts[3])
	}

	return &Record{
		ID:         parts[0],
		Credential: parts[1],
		Wins:       wins,
		Losses:     losses,
	}, nil
}

func parseCounter(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative counter %d", n)
	}
	return n, nil
}
