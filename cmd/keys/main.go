package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"nsn-odds-data/internal/db"
	"nsn-odds-data/internal/domain"
	"nsn-odds-data/internal/repository"
	"nsn-odds-data/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace/noop"
)

const usage = `usage: go run ./cmd/keys <command>

  create <name>        create a key and print it once
  list                 list keys
  revoke <id>          deactivate a key
  delete <id> [--yes]  remove a key permanently`

type keyStore interface {
	Create(ctx context.Context, name string) (*domain.APIKey, error)
	List(ctx context.Context) ([]*domain.APIKey, error)
	Revoke(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

var (
	loadEnvFunc      = godotenv.Load
	initPostgresFunc = db.InitPostgres
	confirmFunc      = confirm
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1)
	keyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
)

func main() {
	loadEnvFunc()
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	ctx := context.Background()
	initPostgresFunc(ctx)
	if db.Pool == nil {
		log.Fatal("DATABASE_URL is required")
	}
	defer db.Close()

	tracer := noop.NewTracerProvider().Tracer("keys")
	keys := service.NewAPIKeyService(tracer, repository.NewAPIKeyRepository(db.Pool, tracer))

	if err := run(ctx, keys, os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func parseID(args []string) (int64, error) {
	if len(args) < 2 {
		return 0, errors.New("missing key id")
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid key id %q", args[1])
	}
	return id, nil
}

func run(ctx context.Context, keys keyStore, args []string, out io.Writer) error {
	switch args[0] {
	case "create":
		name := strings.TrimSpace(strings.Join(args[1:], " "))
		if name == "" {
			return errors.New("create needs a name")
		}
		k, err := keys.Create(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created key %d (%s)\n%s\nStore this key securely, it will not be shown again.\n",
			k.ID, k.Name, keyStyle.Render(k.Key))
		return nil
	case "list":
		list, err := keys.List(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Fprintln(out, "No API keys")
			return nil
		}
		fmt.Fprintln(out, keysTable(list))
		return nil
	case "revoke":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if err := keys.Revoke(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "Revoked key %d\n", id)
		return nil
	case "delete":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		if !hasFlag(args[2:], "--yes") {
			ok, err := confirmFunc(fmt.Sprintf("Delete API key %d permanently?", id))
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "Aborted")
				return nil
			}
		}
		if err := keys.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(out, "Deleted key %d\n", id)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", args[0], usage)
	}
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func keysTable(keys []*domain.APIKey) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "KEY", "ACTIVE", "CREATED", "LAST USED").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(keys) && !keys[row].IsActive {
				return mutedStyle
			}
			return cellStyle
		})
	for _, k := range keys {
		lastUsed := "never"
		if k.LastUsedAt != nil {
			lastUsed = k.LastUsedAt.UTC().Format("2006-01-02 15:04")
		}
		active := "yes"
		if !k.IsActive {
			active = "no"
		}
		t.Row(
			strconv.FormatInt(k.ID, 10),
			k.Name,
			k.Preview(),
			active,
			k.CreatedAt.UTC().Format("2006-01-02 15:04"),
			lastUsed,
		)
	}
	return t.Render()
}

// confirmModel is a y/n prompt.
type confirmModel struct {
	prompt   string
	answered bool
	yes      bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch strings.ToLower(key.String()) {
	case "y":
		m.answered, m.yes = true, true
		return m, tea.Quit
	case "n", "enter", "esc", "ctrl+c", "q":
		m.answered = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.answered {
		return ""
	}
	return m.prompt + " [y/N] "
}

func confirm(prompt string) (bool, error) {
	final, err := tea.NewProgram(confirmModel{prompt: prompt}).Run()
	if err != nil {
		return false, err
	}
	return final.(confirmModel).yes, nil
}
