package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode"

	"mygame/roulette/internal/dao"
	"mygame/roulette/internal/match"
	"mygame/roulette/internal/rank"
	"mygame/roulette/model"
)

var (
	ErrAccountExists   = errors.New("account already exists")
	ErrInvalidLogin    = errors.New("invalid username or password")
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
)

// NewAccountPrompt 登录提示中输入该值表示新建账号，因此不能作为用户名
const NewAccountPrompt = "0"

type Options struct {
	HashCredentials bool
	Cost            int // bcrypt cost
}

// AccountService 账号注册、登录、战绩更新和排行
type AccountService struct {
	store *dao.RecordStore
	opts  Options
}

// NewStore 同时支持 bcrypt 和明文凭证的存储
func NewStore() *dao.RecordStore {
	return dao.NewRecordStore(dao.WithCredentialMatcher(MatchCredential))
}

func NewAccountService(store *dao.RecordStore, opts Options) *AccountService {
	return &AccountService{store: store, opts: opts}
}

func (s *AccountService) Store() *dao.RecordStore {
	return s.store
}

// Register 创建新账号，用户名已存在时返回 ErrAccountExists
func (s *AccountService) Register(username, password string) (*model.Record, error) {
	// 1. 校验：存档格式以空格分隔且不转义
	if username == "" || username == NewAccountPrompt || strings.ContainsFunc(username, unicode.IsSpace) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidUsername, username)
	}
	if password == "" || strings.ContainsFunc(password, unicode.IsSpace) {
		return nil, ErrInvalidPassword
	}

	// 2. 查重
	if _, err := s.store.Lookup(username); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountExists, username)
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	// 3. 密码加密
	credential := password
	if s.opts.HashCredentials {
		hashed, err := HashPassword(password, s.opts.Cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		credential = hashed
	}

	// 4. 写入存储
	if _, _, err := s.store.Put(model.NewRecord(username, credential)); err != nil {
		return nil, err
	}
	log.Printf("Account created: %s", username)
	return s.store.Lookup(username)
}

// Login 登录；用户不存在和密码错误都返回 ErrInvalidLogin
func (s *AccountService) Login(username, password string) (*model.Record, error) {
	ok, err := s.store.CheckCredentials(username, password)
	if errors.Is(err, model.ErrNotFound) || errors.Is(err, model.ErrInvalidArgument) {
		return nil, ErrInvalidLogin
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidLogin
	}
	return s.store.Lookup(username)
}

// Account 按用户名取账号
func (s *AccountService) Account(username string) (*model.Record, error) {
	return s.store.Lookup(username)
}

// Apply 把一局结果记到对应账号上
func (s *AccountService) Apply(result match.GameResult) error {
	r, err := s.store.Lookup(result.Username)
	if err != nil {
		return err
	}

	switch result.Outcome {
	case match.Win:
		r.Win()
	case match.Loss:
		r.Lose()
	default:
		return fmt.Errorf("apply %s: %w", result.Outcome, model.ErrInvalidArgument)
	}

	log.Printf("Game result applied: match_id=%s, username=%s, outcome=%s", result.MatchID, result.Username, result.Outcome)
	return nil
}

func (s *AccountService) Remove(username string) error {
	if _, err := s.store.Remove(username); err != nil {
		return err
	}
	log.Printf("Account removed: %s", username)
	return nil
}

// Leaderboard 用当前存储的快照建一个新的排行榜
func (s *AccountService) Leaderboard() (*rank.Leaderboard, error) {
	return rank.NewFrom(s.store.Records())
}

// Top 前 n 名
func (s *AccountService) Top(n int) ([]*model.Record, error) {
	lb, err := s.Leaderboard()
	if err != nil {
		return nil, err
	}
	return lb.TopN(n)
}

// Load 读档；失败时清空存储并返回错误
func (s *AccountService) Load(path string) (dao.LoadStats, error) {
	stats, err := dao.LoadFile(path, s.store)
	if err != nil {
		log.Printf("Failed to load accounts from %s: %v", path, err)
		s.store.Clear()
		return stats, err
	}
	log.Printf("Loaded %d accounts from %s (%d lines skipped)", stats.Loaded, path, stats.Skipped)
	return stats, nil
}

func (s *AccountService) Save(path string) error {
	if err := dao.SaveFile(path, s.store); err != nil {
		log.Printf("Failed to save accounts to %s: %v", path, err)
		return err
	}
	log.Printf("Saved %d accounts to %s", s.store.Size(), path)
	return nil
}
