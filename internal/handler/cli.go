package handler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"mygame/roulette/internal/match"
	"mygame/roulette/internal/service"
	"mygame/roulette/model"
	"mygame/roulette/pkg/config"

	"github.com/spf13/cobra"
)

type app struct {
	cfgPath  string
	file     string
	loadErr  error
	accounts *service.AccountService
}

// NewRootCmd 构建命令树；每个子命令执行前加载配置和存档
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:               "roulette",
		Short:             "Shotgun Roulette accounts and leaderboard",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "config file (default ./config.yaml)")
	root.PersistentFlags().StringVar(&a.file, "file", "", "account file (overrides storage.file)")

	root.AddCommand(
		a.registerCmd(),
		a.recordCmd(),
		a.topCmd(),
		a.removeCmd(),
		a.playCmd(),
	)
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	// 1. 加载配置
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	config.AppConfig = cfg
	if a.file == "" {
		a.file = cfg.Storage.File
	}

	// 2. 初始化账号服务
	a.accounts = service.NewAccountService(service.NewStore(), service.Options{
		HashCredentials: cfg.Credentials.Hash == config.HashBcrypt,
		Cost:            cfg.Credentials.Cost,
	})

	// 3. 读档；失败时退化为空存储继续运行，但不再写回，避免覆盖原存档
	a.loadErr = nil
	if _, err := a.accounts.Load(a.file); err != nil {
		a.loadErr = err
		fmt.Fprintf(cmd.ErrOrStderr(), "An error occurred while reading %s: %v\n", a.file, err)
	}
	return nil
}

// save 存档失败只报告，不中断
func (a *app) save(cmd *cobra.Command) {
	if a.loadErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Not saving %s: it could not be read at startup.\n", a.file)
		return
	}
	if err := a.accounts.Save(a.file); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "An error occurred while writing %s: %v\n", a.file, err)
	}
}

func (a *app) registerCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewScanner(cmd.InOrStdin())
			pwd, err := passwordOrPrompt(cmd, in, password)
			if err != nil {
				return err
			}
			if _, err := a.accounts.Register(args[0], pwd); err != nil {
				return err
			}
			a.save(cmd)
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s created.\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func (a *app) recordCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "record <username> <win|loss>",
		Short: "Record the result of a finished game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			outcome, err := match.ParseOutcome(args[1])
			if err != nil {
				return err
			}
			in := bufio.NewScanner(cmd.InOrStdin())
			pwd, err := passwordOrPrompt(cmd, in, password)
			if err != nil {
				return err
			}
			r, err := a.accounts.Login(args[0], pwd)
			if err != nil {
				return err
			}
			if err := a.accounts.Apply(match.NewGameResult(r.ID, outcome)); err != nil {
				return err
			}
			a.save(cmd)
			printRecord(cmd.OutOrStdout(), r)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func (a *app) topCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "top [n]",
		Short: "Print the win rate leaderboard",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := config.AppConfig.Leaderboard.Size
			if len(args) == 1 {
				v, err := strconv.Atoi(args[0])
				if err != nil || v < 0 {
					return fmt.Errorf("invalid count %q", args[0])
				}
				n = v
			}
			return a.printLeaderboard(cmd.OutOrStdout(), n)
		},
	}
}

func (a *app) removeCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "remove <username>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewScanner(cmd.InOrStdin())
			pwd, err := passwordOrPrompt(cmd, in, password)
			if err != nil {
				return err
			}
			if _, err := a.accounts.Login(args[0], pwd); err != nil {
				return err
			}
			if err := a.accounts.Remove(args[0]); err != nil {
				return err
			}
			a.save(cmd)
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s removed.\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

// playCmd 原游戏的会话流程：登录或建号，逐行接收对局结果，退出时存档并打印排行榜
func (a *app) playCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Log in and record game results interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			in := bufio.NewScanner(cmd.InOrStdin())

			r, err := a.login(out, in)
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Welcome, %s!\n", r.ID)

			for {
				fmt.Fprintln(out, "Enter the game result: win, loss or quit.")
				line, ok := readLine(in)
				if !ok || strings.EqualFold(line, "quit") {
					break
				}
				outcome, err := match.ParseOutcome(line)
				if err != nil {
					fmt.Fprintln(out, "Please enter win, loss or quit.")
					continue
				}
				if err := a.accounts.Apply(match.NewGameResult(r.ID, outcome)); err != nil {
					return err
				}
				printRecord(out, r)
			}

			a.save(cmd)
			return a.printLeaderboard(out, config.AppConfig.Leaderboard.Size)
		},
	}
}

// login 循环直到登录成功或新建账号；输入结束时返回 io.EOF
func (a *app) login(out io.Writer, in *bufio.Scanner) (*model.Record, error) {
	for {
		fmt.Fprintf(out, "Please enter your username. Enter (%s) to create new account\n", service.NewAccountPrompt)
		username, ok := readLine(in)
		if !ok {
			return nil, io.EOF
		}

		if username == service.NewAccountPrompt {
			fmt.Fprintln(out, "Please enter new username: ")
			username, ok = readLine(in)
			if !ok {
				return nil, io.EOF
			}
			fmt.Fprintln(out, "Please enter new password: ")
			password, ok := readLine(in)
			if !ok {
				return nil, io.EOF
			}
			r, err := a.accounts.Register(username, password)
			if err != nil {
				fmt.Fprintf(out, "Could not create account: %v\n", err)
				continue
			}
			return r, nil
		}

		fmt.Fprintln(out, "Please enter your password.")
		password, ok := readLine(in)
		if !ok {
			return nil, io.EOF
		}
		r, err := a.accounts.Login(username, password)
		if errors.Is(err, service.ErrInvalidLogin) {
			fmt.Fprintln(out, "Invalid username or password.")
			continue
		}
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

func (a *app) printLeaderboard(out io.Writer, n int) error {
	lb, err := a.accounts.Leaderboard()
	if err != nil {
		return err
	}
	return lb.Print(out, n)
}

func passwordOrPrompt(cmd *cobra.Command, in *bufio.Scanner, password string) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Please enter your password.")
	line, ok := readLine(in)
	if !ok {
		return "", errors.New("no password given")
	}
	return line, nil
}

func readLine(in *bufio.Scanner) (string, bool) {
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

func printRecord(out io.Writer, r *model.Record) {
	fmt.Fprintf(out, "%s: %d wins, %d losses (%.1f%%)\n", r.ID, r.Wins, r.Losses, r.WinRate()*100)
}
