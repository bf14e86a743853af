package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuqie6/growthlog/internal/ai"
	"github.com/yuqie6/growthlog/internal/eventbus"
	"github.com/yuqie6/growthlog/internal/github"
	"github.com/yuqie6/growthlog/internal/httpapi"
	"github.com/yuqie6/growthlog/internal/pkg/config"
	"github.com/yuqie6/growthlog/internal/repository"
	"github.com/yuqie6/growthlog/internal/service"
)

var (
	cfgFile string
	cfg     *config.Config
	db      *repository.Database
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "growthlog",
		Short: "GrowthLog - 开发者成长日报与分析系统",
		Long:  `GrowthLog 从 GitHub 活动自动生成每日开发日报，并计算连续记录、学习动量、技能分布等成长指标。`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				slog.Error("加载配置失败", "error", err)
				os.Exit(1)
			}
			config.SetupLogger(cfg.App.LogLevel)

			db, err = repository.NewDatabase(cfg.Storage.DBPath)
			if err != nil {
				slog.Error("初始化数据库失败", "error", err)
				os.Exit(1)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(growthCmd())
	rootCmd.AddCommand(weeklyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runtime 子命令共用的服务集合
type runtime struct {
	gh      *github.Client
	hub     *eventbus.Hub
	reports *service.ReportService
	growth  *service.GrowthService
	weekly  *service.WeeklyService
}

// buildRuntime 装配服务。AI 教练与向量记忆按配置可选。
func buildRuntime() *runtime {
	loc := cfg.Location()
	hub := eventbus.NewHub()

	ghClient := github.NewClient(cfg.GitHub.Token)
	reportRepo := repository.NewReportRepository(db.DB)
	analyzer := service.NewTechStackAnalyzer(ghClient, reportRepo)

	var coach service.CoachCommenter
	if cfg.AI.DeepSeek.APIKey != "" {
		deepseek := ai.NewDeepSeekClient(&ai.DeepSeekConfig{
			APIKey:  cfg.AI.DeepSeek.APIKey,
			BaseURL: cfg.AI.DeepSeek.BaseURL,
			Model:   cfg.AI.DeepSeek.Model,
		})
		coach = service.NewCoachService(deepseek)
	}

	var memory service.ReportMemory
	if cfg.AI.SiliconFlow.APIKey != "" {
		embedder := ai.NewSiliconFlowClient(&ai.SiliconFlowConfig{
			APIKey:         cfg.AI.SiliconFlow.APIKey,
			BaseURL:        cfg.AI.SiliconFlow.BaseURL,
			EmbeddingModel: cfg.AI.SiliconFlow.EmbeddingModel,
		})
		ms, err := service.NewMemoryService(embedder, cfg.Storage.MemoryPath)
		if err != nil {
			slog.Warn("初始化记忆服务失败，继续但不启用记忆", "error", err)
		} else {
			memory = ms
		}
	}

	return &runtime{
		gh:      ghClient,
		hub:     hub,
		reports: service.NewReportService(reportRepo, ghClient, analyzer, coach, memory, hub, loc),
		growth:  service.NewGrowthService(reportRepo, loc),
		weekly:  service.NewWeeklyService(reportRepo, loc),
	}
}

// serveCmd 启动本地 HTTP 服务
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "启动本地 HTTP 服务",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			rt := buildRuntime()

			srv, err := httpapi.Start(ctx, cfg, httpapi.Services{
				Reports: rt.reports,
				Growth:  rt.growth,
				Weekly:  rt.weekly,
			}, rt.gh, rt.hub, httpapi.Options{ListenAddr: cfg.Server.ListenAddr})
			if err != nil {
				slog.Error("启动 HTTP 服务失败", "error", err)
				os.Exit(1)
			}

			// 配置热加载：运行中轮换 GitHub Token 无需重启
			watchPath := cfgFile
			if watchPath == "" {
				if p, err := config.DefaultConfigPath(); err == nil {
					watchPath = p
				}
			}
			if watchPath != "" {
				if err := config.Watch(ctx, watchPath, func(next *config.Config) {
					rt.gh.Reset(next.GitHub.Token)
				}); err != nil {
					slog.Warn("配置监听未启用", "path", watchPath, "error", err)
				}
			}

			fmt.Printf("🚀 GrowthLog 已启动: %s\n", srv.BaseURL())
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			fmt.Println("👋 已退出")
		},
	}
}

// fetchCmd 抓取指定日期的 GitHub 活动（预览，不落库）
func fetchCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "抓取并分析当日 GitHub 活动",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			rt := buildRuntime()

			if !rt.gh.IsConfigured() {
				fmt.Println("⚠️  GitHub Token 未配置")
				fmt.Println("   请设置环境变量: GITHUB_TOKEN")
				fmt.Println("   或在 config.yaml 中配置")
				os.Exit(1)
			}

			target := date
			if target == "" {
				target = service.DateKey(time.Now(), cfg.Location())
			}

			fmt.Printf("📡 正在抓取 %s 的 GitHub 活动...\n\n", target)

			activity, err := rt.reports.ComposeDailyActivity(ctx, cfg.App.DefaultUser, cfg.GitHub.Username, target)
			if err != nil {
				fmt.Printf("❌ 抓取失败: %v\n", err)
				os.Exit(1)
			}

			printActivity(activity)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "指定日期 (YYYY-MM-DD)，默认今天")
	return cmd
}

func printActivity(a *service.DailyActivity) {
	fmt.Printf("📅 %s 活动概览\n", a.Date)
	fmt.Println("═══════════════════════════════════════")
	fmt.Printf("\n📊 统计\n")
	fmt.Printf("  • 提交数: %d\n", a.CommitStats.CommitCount)
	fmt.Printf("  • 变更行数: %d (+%d / -%d)\n",
		a.CommitStats.LinesChanged, a.CommitStats.LinesAdded, a.CommitStats.LinesDeleted)
	fmt.Printf("  • PR 数: %d (已合并 %d)\n", a.PRStats.PRCount, a.PRStats.MergedCount)
	fmt.Printf("  • 变更规模: %s\n", a.ChangeSize)

	if len(a.CommitStats.Repositories) > 0 {
		fmt.Printf("\n📦 涉及仓库\n")
		for _, repo := range a.CommitStats.Repositories {
			fmt.Printf("  • %s\n", repo)
		}
	}

	if len(a.TechTags) > 0 {
		fmt.Printf("\n🎯 使用技术\n")
		for _, tag := range a.TechTags {
			marker := ""
			if tag.IsNew {
				marker = " ✨NEW"
			}
			fmt.Printf("  • %s%s\n", tag.Name, marker)
		}
	}

	fmt.Printf("\n📝 活动摘要\n%s\n", a.PRSummary)
	fmt.Println("\n═══════════════════════════════════════")
}

// reportCmd 创建当日日报（自动附带 GitHub 活动数据）
func reportCmd() *cobra.Command {
	var (
		title     string
		learning  string
		struggles string
		tomorrow  string
		skipFetch bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "创建今日日报",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			rt := buildRuntime()
			loc := cfg.Location()
			today := service.DateKey(time.Now(), loc)

			input := &service.CreateReportInput{
				Title:         title,
				TodayLearning: learning,
				Struggles:     struggles,
				Tomorrow:      tomorrow,
			}

			if !skipFetch && rt.gh.IsConfigured() {
				fmt.Println("📡 正在抓取今日 GitHub 活动...")
				activity, err := rt.reports.ComposeDailyActivity(ctx, cfg.App.DefaultUser, cfg.GitHub.Username, today)
				if err != nil {
					fmt.Printf("⚠️  活动抓取失败，日报将不含活动数据: %v\n", err)
				} else {
					input.CommitCount = activity.CommitStats.CommitCount
					input.LinesChanged = activity.CommitStats.LinesChanged
					input.PRCount = activity.PRStats.PRCount
					input.ChangeSize = activity.ChangeSize
					input.PRSummary = activity.PRSummary
					input.TechTags = activity.TechTags
					if len(activity.CommitStats.Repositories) > 0 {
						input.GithubURL = "https://github.com/" + strings.SplitN(activity.CommitStats.Repositories[0], "/", 2)[0]
					}
				}
			}
			if input.GithubURL == "" && cfg.GitHub.Username != "" {
				input.GithubURL = "https://github.com/" + cfg.GitHub.Username
			}

			report, err := rt.reports.CreateReport(ctx, cfg.App.DefaultUser, input)
			if err != nil {
				fmt.Printf("❌ 创建日报失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("\n✅ 日报已创建: %s\n", report.Date)
			fmt.Printf("  • 提交数: %d / PR 数: %d / 变更行数: %d (%s)\n",
				report.CommitCount, report.PRCount, report.LinesChanged, report.ChangeSize)
			if report.AICoachComment != "" {
				fmt.Printf("\n💬 教练评语\n%s\n", report.AICoachComment)
			}
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "日报标题")
	cmd.Flags().StringVar(&learning, "learning", "", "今天学到了什么")
	cmd.Flags().StringVar(&struggles, "struggles", "", "遇到的课题")
	cmd.Flags().StringVar(&tomorrow, "tomorrow", "", "明天的计划")
	cmd.Flags().BoolVar(&skipFetch, "skip-fetch", false, "不抓取 GitHub 活动")
	return cmd
}

// growthCmd 查看成长指标
func growthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "growth",
		Short: "查看成长指标",
		Run: func(cmd *cobra.Command, args []string) {
			rt := buildRuntime()

			data, err := rt.growth.GetGrowthData(cmd.Context(), cfg.App.DefaultUser)
			if err != nil {
				fmt.Printf("❌ 读取成长数据失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Println("📈 成长指标")
			fmt.Println("═══════════════════════════════════════")
			fmt.Printf("\n🔥 连续记录: %d 天\n", data.Streak)
			fmt.Printf("⚡ 学习动量: %d\n", data.Momentum)

			fmt.Printf("\n📊 本周提交\n")
			for _, p := range data.WeeklyCommits {
				bar := strings.Repeat("█", min(p.Value, 40))
				fmt.Printf("  %s %3d %s\n", p.DayOfWeek, p.Value, bar)
			}

			if len(data.SkillMap) > 0 {
				fmt.Printf("\n🎯 技能分布\n")
				for _, s := range data.SkillMap {
					fmt.Printf("  • %-24s %5.1f%%\n", s.Name, s.Percentage)
				}
			}
			fmt.Println("\n═══════════════════════════════════════")
		},
	}
}

// weeklyCmd 查看周报统计
func weeklyCmd() *cobra.Command {
	var offset int

	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "查看周报统计",
		Run: func(cmd *cobra.Command, args []string) {
			rt := buildRuntime()

			stats, err := rt.weekly.GetWeeklyStats(cmd.Context(), cfg.App.DefaultUser, offset)
			if err != nil {
				fmt.Printf("❌ 读取周报统计失败: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("📅 %s 週報\n", stats.WeekLabel)
			fmt.Println("═══════════════════════════════════════")
			fmt.Printf("\n📊 本周统计\n")
			fmt.Printf("  • 提交数: %d\n", stats.TotalCommits)
			fmt.Printf("  • PR 数: %d\n", stats.TotalPRs)
			fmt.Printf("  • 变更行数: %d\n", stats.TotalLinesChanged)
			fmt.Printf("  • 日报天数: %d 天\n", stats.DailyReportCount)
			fmt.Printf("  • 周动量: %d\n", stats.WeeklyMomentum)

			if stats.NewTechCount > 0 {
				fmt.Printf("\n✨ 新技术 (%d)\n", stats.NewTechCount)
				for _, name := range stats.NewTechTags {
					fmt.Printf("  • %s\n", name)
				}
			}

			fmt.Printf("\n📋 每日明细\n")
			for _, d := range stats.DailyBreakdown {
				fmt.Printf("  %s (%s): %d commits / %d PRs / %d lines\n",
					d.Date, d.DayOfWeek, d.Commits, d.PRs, d.Lines)
			}

			if stats.MostProductiveDay.Date != "" && stats.MostProductiveDay.Commits > 0 {
				fmt.Printf("\n🏆 最高产的一天: %s (%s) %d commits\n",
					stats.MostProductiveDay.Date, stats.MostProductiveDay.DayOfWeek, stats.MostProductiveDay.Commits)
			}
			if stats.BiggestChange != nil {
				fmt.Printf("💥 最大变更: %s (%d 行, %s)\n",
					stats.BiggestChange.Title, stats.BiggestChange.Lines, stats.BiggestChange.Date)
			}
			fmt.Println("\n═══════════════════════════════════════")
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "周偏移 (0=本周, -1=上周)")
	return cmd
}
