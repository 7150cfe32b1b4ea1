package main

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iliyamo/ndc-feature-tracker/internal/ai"
	"github.com/iliyamo/ndc-feature-tracker/internal/query"
	"github.com/iliyamo/ndc-feature-tracker/internal/repository"
	"github.com/iliyamo/ndc-feature-tracker/internal/service"
)

func (s *settings) analyzer() (*query.Analyzer, error) {
	aliases, err := query.LoadAliases(s.v.GetString("aliases_file"))
	if err != nil {
		return nil, err
	}
	return query.NewAnalyzer(aliases), nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newClassifyCmd(s *settings) *cobra.Command {
	return &cobra.Command{
		Use:     "classify <question>",
		Short:   "Print the entities and query type extracted from a question",
		Example: `  ndcctl classify "Does Lufthansa support seat selection?"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an, err := s.analyzer()
			if err != nil {
				return err
			}
			return printJSON(cmd, an.Analyze(strings.Join(args, " ")))
		},
	}
}

func newContextCmd(s *settings) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "context <question>",
		Short: "Build the catalog context for a question and print it as the model would see it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an, err := s.analyzer()
			if err != nil {
				return err
			}
			db, err := s.openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			log := s.logger()
			defer func() { _ = log.Sync() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), cliTimeout)
			defer cancel()

			entities := an.Analyze(strings.Join(args, " "))
			items := query.NewBuilder(repository.NewCatalog(db), log).Build(ctx, entities)
			if asJSON {
				return printJSON(cmd, map[string]any{"entities": entities, "context": items})
			}
			cmd.Printf("query type: %s (confidence %.2f)\n", entities.QueryType, entities.Confidence)
			cmd.Printf("implementations: %d\n", query.CountImplementations(items))
			cmd.Print(query.SerializeContext(items))
			cmd.Println()
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print entities and context items as JSON")
	return cmd
}

func newAskCmd(s *settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question with the full chat pipeline",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			an, err := s.analyzer()
			if err != nil {
				return err
			}
			cfg := s.aiConfig()
			if !cfg.Enabled() {
				return errors.New("ANTHROPIC_API_KEY is not set")
			}
			db, err := s.openDB()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			log := s.logger()
			defer func() { _ = log.Sync() }()

			chat := service.NewChatService(an,
				query.NewBuilder(repository.NewCatalog(db), log),
				ai.NewClient(cfg, log),
				cfg.ChatTimeout,
				log,
			)
			res, err := chat.Process(cmd.Context(), service.ChatRequest{Message: strings.Join(args, " ")})
			if err != nil {
				return err
			}
			cmd.Println(res.Message)
			return nil
		},
	}
	cmd.Flags().String("model", "", "model name (AI_MODEL)")
	cmd.Flags().String("api-key", "", "Anthropic API key (ANTHROPIC_API_KEY)")
	cmd.Flags().Duration("timeout", 0, "request timeout (CHAT_TIMEOUT)")
	_ = s.v.BindPFlag("ai_model", cmd.Flags().Lookup("model"))
	_ = s.v.BindPFlag("anthropic_api_key", cmd.Flags().Lookup("api-key"))
	_ = s.v.BindPFlag("chat_timeout", cmd.Flags().Lookup("timeout"))
	return cmd
}
