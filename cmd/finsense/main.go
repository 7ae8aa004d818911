package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/finsense/internal/profile"
	aiplugin "github.com/hrygo/finsense/plugin/ai"
	"github.com/hrygo/finsense/plugin/ai/agent"
	"github.com/hrygo/finsense/plugin/ai/cache"
	"github.com/hrygo/finsense/plugin/ai/session"
	"github.com/hrygo/finsense/server"
	serverai "github.com/hrygo/finsense/server/ai"
	"github.com/hrygo/finsense/server/retrieval"
	apiv1 "github.com/hrygo/finsense/server/router/api/v1"
	"github.com/hrygo/finsense/store"
	"github.com/hrygo/finsense/store/db"
)

const greetingBanner = `finsense - conversational assistant for quarterly financial reports`

var rootCmd = &cobra.Command{
	Use:   "finsense",
	Short: "A conversational RAG assistant for financial reports",
	Run: func(_ *cobra.Command, _ []string) {
		instanceProfile := loadProfile()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		st, err := openStore(ctx, instanceProfile)
		if err != nil {
			slog.Error("failed to open store", slog.String("error", err.Error()))
			os.Exit(1)
		}

		api, err := buildAPIService(instanceProfile, st)
		if err != nil {
			slog.Error("failed to build services", slog.String("error", err.Error()))
			os.Exit(1)
		}

		s := server.NewServer(instanceProfile, st, api)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigChan
			slog.Info("shutting down")
			s.Shutdown(ctx)
			cancel()
		}()

		fmt.Println(greetingBanner)
		if err := s.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", slog.String("error", err.Error()))
		}

		<-ctx.Done()
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <report-id> <file>",
	Short: "Chunk, embed, and store one financial report",
	Args:  cobra.ExactArgs(2),
	Run: func(_ *cobra.Command, args []string) {
		instanceProfile := loadProfile()
		if err := instanceProfile.Validate(); err != nil {
			slog.Error("invalid configuration", slog.String("error", err.Error()))
			os.Exit(1)
		}

		reportID, path := args[0], args[1]
		content, err := os.ReadFile(path)
		if err != nil {
			slog.Error("failed to read report file", slog.String("path", path), slog.String("error", err.Error()))
			os.Exit(1)
		}

		ctx := context.Background()
		st, err := openStore(ctx, instanceProfile)
		if err != nil {
			slog.Error("failed to open store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer st.Close()

		aiConfig := aiplugin.NewConfigFromProfile(instanceProfile)
		embedding, err := aiplugin.NewEmbeddingService(&aiConfig.Embedding)
		if err != nil {
			slog.Error("failed to create embedding service", slog.String("error", err.Error()))
			os.Exit(1)
		}

		ingester := serverai.NewIngester(embedding, st, instanceProfile.AIEmbeddingModel)
		chunks, err := ingester.IngestReport(ctx, reportID, string(content))
		if err != nil {
			slog.Error("ingestion failed", slog.String("report_id", reportID), slog.String("error", err.Error()))
			os.Exit(1)
		}

		fmt.Printf("ingested %s: %d chunks\n", reportID, chunks)
	},
}

func loadProfile() *profile.Profile {
	p := &profile.Profile{
		Mode:    viper.GetString("mode"),
		Addr:    viper.GetString("addr"),
		Port:    viper.GetInt("port"),
		Data:    viper.GetString("data"),
		Driver:  viper.GetString("driver"),
		DSN:     viper.GetString("dsn"),
		Version: "0.1.0",
	}
	p.FromEnv()
	return p
}

func openStore(ctx context.Context, p *profile.Profile) (*store.Store, error) {
	driver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}
	st := store.New(driver, p)
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

func buildAPIService(p *profile.Profile, st *store.Store) (*apiv1.APIV1Service, error) {
	aiConfig := aiplugin.NewConfigFromProfile(p)
	if err := aiConfig.Validate(); err != nil {
		return nil, err
	}

	llm, err := aiplugin.NewLLMService(&aiConfig.LLM)
	if err != nil {
		return nil, err
	}
	embedding, err := aiplugin.NewEmbeddingService(&aiConfig.Embedding)
	if err != nil {
		return nil, err
	}

	answerCache := cache.NewService(cache.DefaultServiceConfig())
	retriever := retrieval.NewRetriever(st, embedding, llm, p.AIEmbeddingModel,
		retrieval.WithCache(answerCache))

	tools := agent.NewToolRegistry()
	if err := tools.Register(retrieval.NewSearchTool(retriever)); err != nil {
		return nil, err
	}

	oracle, err := agent.NewOracle(llm, tools)
	if err != nil {
		return nil, err
	}
	memory := agent.NewMemoryManager(agent.NewLLMSummarizer(llm),
		agent.WithThreshold(p.AgentMemoryThreshold),
		agent.WithCompressCount(p.AgentCompressCount))
	engine, err := agent.NewEngine(memory, oracle, tools,
		agent.WithMaxIterations(p.AgentMaxIterations))
	if err != nil {
		return nil, err
	}

	sessions := session.NewSessionStore(st, cache.NewService(cache.DefaultServiceConfig()))

	return apiv1.NewAPIV1Service(p, st, sessions, engine), nil
}

func init() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("finsense")

	rootCmd.PersistentFlags().String("mode", "demo", `mode of server, can be "prod" or "dev" or "demo"`)
	rootCmd.PersistentFlags().String("addr", "", "address of server")
	rootCmd.PersistentFlags().Int("port", 8230, "port of server")
	rootCmd.PersistentFlags().String("data", ".", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", "database driver")
	rootCmd.PersistentFlags().String("dsn", "", "database source name")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(ingestCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
