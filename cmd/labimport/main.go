package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/labimport/internal/archive"
	"github.com/xxxsen/labimport/internal/config"
	"github.com/xxxsen/labimport/internal/db"
	"github.com/xxxsen/labimport/internal/filestore"
	"github.com/xxxsen/labimport/internal/job"
	"github.com/xxxsen/labimport/internal/manifest"
	"github.com/xxxsen/labimport/internal/model"
	"github.com/xxxsen/labimport/internal/pkg/errcode"
	"github.com/xxxsen/labimport/internal/repo"
	"github.com/xxxsen/labimport/internal/schedule"
	"github.com/xxxsen/labimport/internal/service"
	"github.com/xxxsen/labimport/internal/workspace"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "labimport",
		Short:        "import lab notebook export archives",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json")

	rootCmd.AddCommand(newImportCmd(&configPath), newMigrateCmd(&configPath), newSweepCmd(&configPath))

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Error("command failed", zap.Error(err))
		os.Exit(errcode.FromError(err))
	}
}

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(context.Background()).Debug("config loaded", zap.String("config", configPath))
	return cfg, nil
}

func openDB(cfg *config.Config) (*sqlx.DB, error) {
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return conn, nil
}

func newImportCmd(configPath *string) *cobra.Command {
	var (
		archivePath string
		identity    model.Identity
		target      model.ImportTarget
		asJSON      bool
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "import one export archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			conn, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()

			svc, err := buildImportService(cfg, conn)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			result, importErr := svc.Import(ctx, service.ImportRequest{
				ArchivePath: archivePath,
				Identity:    identity,
				Target:      target,
			})
			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				renderResult(cmd.OutOrStdout(), result)
			}
			return importErr
		},
	}
	cmd.Flags().StringVar(&archivePath, "archive", "", "path to the zip archive")
	cmd.Flags().StringVar(&identity.UserID, "user", "", "importing user id")
	cmd.Flags().StringVar(&identity.TeamID, "team", "", "importing team id")
	cmd.Flags().StringVar(&target.CategoryID, "category", "", "item category id for item archives")
	cmd.Flags().StringVar(&target.OwnerID, "owner", "", "owner of imported experiments, defaults to --user")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as json")
	_ = cmd.MarkFlagRequired("archive")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("team")
	return cmd
}

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			conn, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer conn.Close()
			logutil.GetLogger(context.Background()).Info("migrations applied", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}

func newSweepCmd(configPath *string) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "remove stale extraction workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			sweepJob := job.NewWorkspaceSweepJob(
				workspace.NewManager(cfg.Import.TmpDir),
				time.Duration(cfg.Import.SweepMaxAgeHours)*time.Hour,
			)
			scheduler := schedule.NewCronScheduler()
			if err := scheduler.AddJob(sweepJob, cfg.Import.SweepCron); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if once {
				return scheduler.RunNow(ctx, sweepJob.Name())
			}
			scheduler.Start(ctx)
			logutil.GetLogger(ctx).Info("sweeper running",
				zap.String("root", cfg.Import.TmpDir),
				zap.Time("next", scheduler.Next(sweepJob.Name())),
			)
			<-ctx.Done()
			scheduler.Stop()
			logutil.GetLogger(context.Background()).Info("sweeper stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "sweep once and exit")
	return cmd
}

func buildImportService(cfg *config.Config, conn *sqlx.DB) (*service.ImportService, error) {
	store, err := filestore.New(cfg.FileStore)
	if err != nil {
		return nil, fmt.Errorf("init file store: %w", err)
	}
	statusService := service.NewStatusService(
		repo.NewStatusRepo(conn),
		cfg.Import.StatusCacheSize,
		time.Duration(cfg.Import.StatusCacheTTLSeconds)*time.Second,
	)
	recordImporter := service.NewRecordImporter(repo.NewItemRepo(conn), repo.NewExperimentRepo(conn), statusService)
	uploadService := service.NewUploadService(repo.NewUploadRepo(conn), store)
	tagService := service.NewTagService(repo.NewTagRepo(conn))
	extractor := archive.NewExtractor(archive.Options{
		MaxArchiveSize:   cfg.Import.MaxArchiveBytes(),
		MaxEntries:       cfg.Import.MaxEntries,
		MaxExtractedSize: cfg.Import.MaxExtractedBytes(),
	})
	return service.NewImportService(
		repo.NewTxManager(conn),
		recordImporter,
		uploadService,
		service.NewTagIngestor(tagService),
		extractor,
		manifest.NewReader(cfg.Import.StrictKind),
		workspace.NewManager(cfg.Import.TmpDir),
		service.ImportOptions{OnInvalidRecord: cfg.Import.OnInvalidRecord},
	), nil
}
