package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"arvyax/internal/cache"
	"arvyax/internal/config"
	"arvyax/internal/db"
	"arvyax/internal/engine"
	"arvyax/internal/migrate"
	"arvyax/internal/server"
	arvyaxsdk "arvyax/sdk/go"
)

var rootCmd = &cobra.Command{
	Use:   "avx",
	Short: "Arvyax CLI",
	Long: `Arvyax is a personal productivity tracker: tasks and projects with
dashboard summaries and analytics.
- Workspace: your .arvyax directory holding the database and cached session.
- Tasks: work items with status (todo, in_progress, completed, cancelled),
  priority, optional due date, and optional project.
- Projects: containers for tasks; deleting a project removes its tasks.
- Dashboard: counts, completion rate, overdue and upcoming tasks.
- Analytics: distributions and a created-vs-completed daily series.
Run 'avx serve' to start the API, then sign up and work against it.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("ARVYAX")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().String("server", "http://127.0.0.1:8787", "API server URL")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(signupCmd())
	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(profileCmd())
	rootCmd.AddCommand(taskCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(analyticsCmd())
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Listen = addr
			}
			if secret := os.Getenv("ARVYAX_JWT_SECRET"); secret != "" {
				cfg.Auth.JWTSecret = secret
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("jwt secret required: set auth.jwt_secret in %s or ARVYAX_JWT_SECRET", config.Path(workspace))
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "arvyax"})
			e := engine.New(conn, cfg)
			if cfg.Redis.Addr != "" {
				store, err := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
				if err != nil {
					logger.Warn("redis unavailable, caching disabled", "addr", cfg.Redis.Addr, "err", err)
				} else {
					defer store.Close()
					e.Cache = store
				}
			}
			handler, err := server.New(server.Config{Engine: e, BasePath: cfg.Server.BasePath, Logger: logger})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: cfg.Server.Listen, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			logger.Info("serving Arvyax API", "addr", cfg.Server.Listen, "base_path", cfg.Server.BasePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

// --- auth commands ---

func signupCmd() *cobra.Command {
	var email, password, fullName string
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			pw, err := resolvePassword(password)
			if err != nil {
				return err
			}
			p, err := client.SignUp(cmd.Context(), email, pw, fullName)
			if err != nil {
				return err
			}
			if err := saveSession(client.Session()); err != nil {
				return err
			}
			fmt.Printf("Signed up as %s (%s)\n", p.FullName, p.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&fullName, "name", "", "full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			pw, err := resolvePassword(password)
			if err != nil {
				return err
			}
			p, err := client.SignIn(cmd.Context(), email, pw)
			if err != nil {
				return err
			}
			if err := saveSession(client.Session()); err != nil {
				return err
			}
			fmt.Printf("Signed in as %s (%s)\n", p.FullName, p.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func logoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Sign out and drop the cached session",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			if err := client.SignOut(cmd.Context()); err != nil {
				return err
			}
			if err := clearSession(); err != nil {
				return err
			}
			fmt.Println("Signed out")
			return nil
		},
	}
	return cmd
}

func whoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			p, err := client.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			return printJSONOrTable(p)
		},
	}
	return cmd
}

func profileCmd() *cobra.Command {
	prof := &cobra.Command{Use: "profile", Short: "Manage your profile"}
	prof.AddCommand(profileShowCmd())
	prof.AddCommand(profileUpdateCmd())
	return prof
}

func profileShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			p, err := client.GetProfile(cmd.Context())
			if err != nil {
				return err
			}
			return printJSONOrTable(p)
		},
	}
	return cmd
}

func profileUpdateCmd() *cobra.Command {
	var fullName, avatarURL, bio, location, website string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			patch := arvyaxsdk.ProfilePatch{}
			if cmd.Flags().Changed("name") {
				patch.FullName = &fullName
			}
			if cmd.Flags().Changed("avatar-url") {
				patch.AvatarURL = &avatarURL
			}
			if cmd.Flags().Changed("bio") {
				patch.Bio = &bio
			}
			if cmd.Flags().Changed("location") {
				patch.Location = &location
			}
			if cmd.Flags().Changed("website") {
				patch.Website = &website
			}
			p, err := client.UpdateProfile(cmd.Context(), patch)
			if err != nil {
				return err
			}
			return printJSONOrTable(p)
		},
	}
	cmd.Flags().StringVar(&fullName, "name", "", "full name")
	cmd.Flags().StringVar(&avatarURL, "avatar-url", "", "avatar URL")
	cmd.Flags().StringVar(&bio, "bio", "", "bio")
	cmd.Flags().StringVar(&location, "location", "", "location")
	cmd.Flags().StringVar(&website, "website", "", "website URL")
	return cmd
}

// --- task commands ---

func taskCmd() *cobra.Command {
	task := &cobra.Command{Use: "task", Short: "Manage tasks"}
	task.AddCommand(taskAddCmd())
	task.AddCommand(taskListCmd())
	task.AddCommand(taskShowCmd())
	task.AddCommand(taskUpdateCmd())
	task.AddCommand(taskDoneCmd())
	task.AddCommand(taskRmCmd())
	return task
}

func taskAddCmd() *cobra.Command {
	var title, description, status, priority, due, projectID string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			in := arvyaxsdk.NewTask{
				Title:       title,
				Description: description,
				Status:      status,
				Priority:    priority,
				ProjectID:   optionalString(projectID),
			}
			if due != "" {
				d, err := parseDate(due)
				if err != nil {
					return err
				}
				in.DueDate = &d
			}
			t, err := client.CreateTask(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSONOrTable(t)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&status, "status", "", "status (todo, in_progress, completed, cancelled)")
	cmd.Flags().StringVar(&priority, "priority", "", "priority (low, medium, high, urgent)")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func taskListCmd() *cobra.Command {
	var f arvyaxsdk.TaskFilters
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			tasks, err := client.ListTasks(cmd.Context(), f)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(tasks)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Due", "Project"})
			for _, t := range tasks {
				due := ""
				if t.DueDate != nil {
					due = shortDate(*t.DueDate)
				}
				project := ""
				if t.ProjectID != nil {
					project = *t.ProjectID
				}
				tw.AppendRow(table.Row{t.ID, t.Title, t.Status, t.Priority, due, project})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&f.Status, "status", "", "status filter")
	cmd.Flags().StringVar(&f.Priority, "priority", "", "priority filter")
	cmd.Flags().StringVar(&f.ProjectID, "project", "", "project filter")
	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "search in title and description")
	return cmd
}

func taskShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			t, err := client.GetTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSONOrTable(t)
		},
	}
	return cmd
}

func taskUpdateCmd() *cobra.Command {
	var title, description, status, priority, due, projectID string
	var clearDue, clearProject bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			patch := arvyaxsdk.TaskPatch{
				ClearDueDate: clearDue,
				ClearProject: clearProject,
			}
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("status") {
				patch.Status = &status
			}
			if cmd.Flags().Changed("priority") {
				patch.Priority = &priority
			}
			if due != "" {
				d, err := parseDate(due)
				if err != nil {
					return err
				}
				patch.DueDate = &d
			}
			if projectID != "" {
				patch.ProjectID = &projectID
			}
			t, err := client.UpdateTask(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return printJSONOrTable(t)
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "task title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&status, "status", "", "status")
	cmd.Flags().StringVar(&priority, "priority", "", "priority")
	cmd.Flags().StringVar(&due, "due", "", "due date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	cmd.Flags().StringVar(&projectID, "project", "", "project id")
	cmd.Flags().BoolVar(&clearProject, "clear-project", false, "detach from project")
	return cmd
}

func taskDoneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between completed and todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			t, err := client.ToggleTask(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSONOrTable(t)
		},
	}
	return cmd
}

func taskRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			if err := client.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}
	return cmd
}

// --- project commands ---

func projectCmd() *cobra.Command {
	prj := &cobra.Command{Use: "project", Short: "Manage projects"}
	prj.AddCommand(projectAddCmd())
	prj.AddCommand(projectListCmd())
	prj.AddCommand(projectShowCmd())
	prj.AddCommand(projectUpdateCmd())
	prj.AddCommand(projectRmCmd())
	return prj
}

func projectAddCmd() *cobra.Command {
	var name, description, status, start, end string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			in := arvyaxsdk.NewProject{
				Name:        name,
				Description: description,
				Status:      status,
			}
			if start != "" {
				d, err := parseDate(start)
				if err != nil {
					return err
				}
				in.StartDate = &d
			}
			if end != "" {
				d, err := parseDate(end)
				if err != nil {
					return err
				}
				in.EndDate = &d
			}
			p, err := client.CreateProject(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSONOrTable(p)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&status, "status", "", "status (planning, active, on_hold, completed, cancelled)")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD or RFC3339)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD or RFC3339)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func projectListCmd() *cobra.Command {
	var status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			projects, err := client.ListProjects(cmd.Context(), status)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(projects)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Name", "Status", "Tasks", "Start", "End"})
			for _, p := range projects {
				start, end := "", ""
				if p.StartDate != nil {
					start = shortDate(*p.StartDate)
				}
				if p.EndDate != nil {
					end = shortDate(*p.EndDate)
				}
				tw.AppendRow(table.Row{p.ID, p.Name, p.Status, p.TaskCount, start, end})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "status filter")
	return cmd
}

func projectShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			p, err := client.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSONOrTable(p)
		},
	}
	return cmd
}

func projectUpdateCmd() *cobra.Command {
	var name, description, status, start, end string
	var clearStart, clearEnd bool
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			patch := arvyaxsdk.ProjectPatch{
				ClearStartDate: clearStart,
				ClearEndDate:   clearEnd,
			}
			if cmd.Flags().Changed("name") {
				patch.Name = &name
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("status") {
				patch.Status = &status
			}
			if start != "" {
				d, err := parseDate(start)
				if err != nil {
					return err
				}
				patch.StartDate = &d
			}
			if end != "" {
				d, err := parseDate(end)
				if err != nil {
					return err
				}
				patch.EndDate = &d
			}
			p, err := client.UpdateProject(cmd.Context(), args[0], patch)
			if err != nil {
				return err
			}
			return printJSONOrTable(p)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "project name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&status, "status", "", "status")
	cmd.Flags().StringVar(&start, "start", "", "start date")
	cmd.Flags().BoolVar(&clearStart, "clear-start", false, "remove the start date")
	cmd.Flags().StringVar(&end, "end", "", "end date")
	cmd.Flags().BoolVar(&clearEnd, "clear-end", false, "remove the end date")
	return cmd
}

func projectRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a project and its tasks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			if err := client.DeleteProject(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}
	return cmd
}

// --- derived views ---

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show the dashboard summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			d, err := client.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(d)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"", "Total", "Todo", "In Progress", "Completed", "Overdue", "Rate"})
			tw.AppendRow(table.Row{"Tasks", d.Tasks.Total, d.Tasks.Todo, d.Tasks.InProgress, d.Tasks.Completed, d.Tasks.Overdue, fmt.Sprintf("%d%%", d.Tasks.CompletionRate)})
			tw.Render()
			if len(d.Overdue) > 0 {
				fmt.Println("\nOverdue:")
				for _, t := range d.Overdue {
					fmt.Printf("  %s  %s\n", t.ID, t.Title)
				}
			}
			if len(d.Upcoming) > 0 {
				fmt.Println("\nDue soon:")
				for _, t := range d.Upcoming {
					due := ""
					if t.DueDate != nil {
						due = shortDate(*t.DueDate)
					}
					fmt.Printf("  %s  %s (%s)\n", t.ID, t.Title, due)
				}
			}
			return nil
		},
	}
	return cmd
}

func analyticsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show productivity analytics",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := authedClient()
			if err != nil {
				return err
			}
			a, err := client.Analytics(cmd.Context(), days)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(a)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Day", "Created", "Completed"})
			for _, p := range a.Productivity {
				tw.AppendRow(table.Row{p.Day, p.Created, p.Completed})
			}
			tw.Render()
			fmt.Printf("\nToday: %d created. This week: %d created, %d completed.\n",
				a.CreatedToday, a.CreatedThisWeek, a.CompletedThisWeek)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "day window (server default when 0)")
	return cmd
}

// --- helpers ---

func newClient() *arvyaxsdk.Client {
	return arvyaxsdk.New(viper.GetString("server"))
}

func authedClient() (*arvyaxsdk.Client, error) {
	client := newClient()
	s, err := loadSession()
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, fmt.Errorf("not signed in: run 'avx login' first")
	}
	client.SetSession(s)
	return client, nil
}

func sessionPath() string {
	return filepath.Join(viper.GetString("workspace"), ".arvyax", "session.json")
}

func saveSession(s *arvyaxsdk.Session) error {
	if s == nil {
		return nil
	}
	if _, err := db.EnsureWorkspace(viper.GetString("workspace")); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(sessionPath(), data, 0o600)
}

func loadSession() (*arvyaxsdk.Session, error) {
	data, err := os.ReadFile(sessionPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var s arvyaxsdk.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func clearSession() error {
	err := os.Remove(sessionPath())
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func resolvePassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: use YYYY-MM-DD or RFC3339", s)
	}
	return t.UTC(), nil
}

func shortDate(rfc3339 string) string {
	if t, err := time.Parse(time.RFC3339, rfc3339); err == nil {
		return t.UTC().Format("2006-01-02")
	}
	return rfc3339
}

func printJSONOrTable(v any) error {
	if viper.GetBool("json") {
		return printJSON(v)
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
