package match

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Outcome 一局结束时玩家的结果
type Outcome int

const (
	Win Outcome = iota + 1
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "unknown"
	}
}

// ParseOutcome 解析 win/w/won 和 loss/lose/l/lost，不区分大小写
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "win", "w", "won":
		return Win, nil
	case "loss", "lose", "l", "lost":
		return Loss, nil
	}
	return 0, fmt.Errorf("unknown outcome %q", s)
}

// GameResult 游戏层产出的一局结果，由账号服务应用到战绩上
type GameResult struct {
	MatchID   string  `json:"match_id"`
	Username  string  `json:"username"`
	Outcome   Outcome `json:"outcome"`
	Timestamp int64   `json:"timestamp"`
}

// NewGameResult 生成带比赛 UUID 的结果
func NewGameResult(username string, outcome Outcome) GameResult {
	return GameResult{
		MatchID:   uuid.NewString(),
		Username:  username,
		Outcome:   outcome,
		Timestamp: time.Now().Unix(),
	}
}
