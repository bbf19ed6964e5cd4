package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"syscall"
	"text/tabwriter"
	"time"

	"golang.org/x/term"

	"github.com/jrsteele09/go-elearn-client/authflow"
	"github.com/jrsteele09/go-elearn-client/endpoints"
	"github.com/jrsteele09/go-elearn-client/models"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	auth     *authflow.Service
	executor *endpoints.Executor
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -email EMAIL [-password PASSWORD]       - start a student session")
	fmt.Fprintln(cli.out, "  admin-login -email EMAIL [-password PASSWORD] - request an admin one-time code")
	fmt.Fprintln(cli.out, "  admin-otp -email EMAIL -otp CODE              - complete the admin login")
	fmt.Fprintln(cli.out, "  logout                                        - end the current session")
	fmt.Fprintln(cli.out, "  whoami                                        - show the current session")
	fmt.Fprintln(cli.out, "  courses [-page N] [-limit N] [-search TEXT]   - list courses")
	fmt.Fprintln(cli.out, "  course -id ID                                 - show one course")
	fmt.Fprintln(cli.out, "  blogs [-page N]                               - list blog posts")
	fmt.Fprintln(cli.out, "  events [-page N]                              - list events")
	fmt.Fprintln(cli.out, "  enroll -course ID                             - enroll in a course")
	fmt.Fprintln(cli.out, "  users [-page N] [-search TEXT]                - list users (admin)")
	fmt.Fprintln(cli.out, "  block-user -id ID [-unblock]                  - block or unblock a user (admin)")
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := cli.flagSet("login")
	loginEmail := loginCmd.String("email", "", "The account email.")
	loginPassword := loginCmd.String("password", "", "The account password. Prompted when omitted.")

	adminLoginCmd := cli.flagSet("admin-login")
	adminLoginEmail := adminLoginCmd.String("email", "", "The admin email.")
	adminLoginPassword := adminLoginCmd.String("password", "", "The admin password. Prompted when omitted.")

	adminOTPCmd := cli.flagSet("admin-otp")
	adminOTPEmail := adminOTPCmd.String("email", "", "The admin email.")
	adminOTPCode := adminOTPCmd.String("otp", "", "The one-time code sent by email.")

	listCmd := cli.flagSet(args[1])
	listPage := listCmd.Int("page", 1, "Page number.")
	listLimit := listCmd.Int("limit", 10, "Page size.")
	listSearch := listCmd.String("search", "", "Search text.")

	courseCmd := cli.flagSet("course")
	courseID := courseCmd.String("id", "", "The course id.")

	enrollCmd := cli.flagSet("enroll")
	enrollCourse := enrollCmd.String("course", "", "The course id.")

	blockCmd := cli.flagSet("block-user")
	blockID := blockCmd.String("id", "", "The user id.")
	blockUndo := blockCmd.Bool("unblock", false, "Unblock instead of block.")

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginEmail == "" {
			loginCmd.Usage()
			return errHelp
		}
		pwd, err := cli.password(*loginPassword)
		if err != nil {
			return err
		}
		user, err := cli.auth.Login(ctx, models.LoginRequest{Email: *loginEmail, Password: pwd})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Logged in as %s <%s>\n", user.Name, user.Email)
		return nil

	case "admin-login":
		if err := adminLoginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *adminLoginEmail == "" {
			adminLoginCmd.Usage()
			return errHelp
		}
		pwd, err := cli.password(*adminLoginPassword)
		if err != nil {
			return err
		}
		if err := cli.auth.AdminLogin(ctx, models.AdminLoginRequest{Email: *adminLoginEmail, Password: pwd}); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "A one-time code has been sent, complete the login with admin-otp")
		return nil

	case "admin-otp":
		if err := adminOTPCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *adminOTPEmail == "" || *adminOTPCode == "" {
			adminOTPCmd.Usage()
			return errHelp
		}
		admin, err := cli.auth.AdminVerifyOTP(ctx, models.AdminVerifyOTPRequest{Email: *adminOTPEmail, OTP: *adminOTPCode})
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Logged in as admin %s (%s)\n", admin.Email, admin.Role)
		return nil

	case "logout":
		if err := cli.auth.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cli.out, "Logged out")
		return nil

	case "whoami":
		cli.printIdentity(cli.auth.WhoAmI())
		return nil

	case "courses", "blogs", "events", "users":
		if err := listCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.list(ctx, args[1], models.ListQuery{Page: *listPage, Limit: *listLimit, Search: *listSearch})

	case "course":
		if err := courseCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *courseID == "" {
			courseCmd.Usage()
			return errHelp
		}
		course, err := cli.executor.Courses().Get(ctx, *courseID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "%s\n%s\nlevel: %s  price: %.2f  published: %t\n",
			course.Title, course.Description, course.Level, course.Price, course.Published)
		return nil

	case "enroll":
		if err := enrollCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *enrollCourse == "" {
			enrollCmd.Usage()
			return errHelp
		}
		if err := cli.executor.Users().Enroll(ctx, *enrollCourse); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Enrolled in %s\n", *enrollCourse)
		return nil

	case "block-user":
		if err := blockCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *blockID == "" {
			blockCmd.Usage()
			return errHelp
		}
		users := cli.executor.Users()
		if *blockUndo {
			if err := users.Unblock(ctx, *blockID); err != nil {
				return err
			}
			fmt.Fprintf(cli.out, "Unblocked %s\n", *blockID)
			return nil
		}
		if err := users.Block(ctx, *blockID); err != nil {
			return err
		}
		fmt.Fprintf(cli.out, "Blocked %s\n", *blockID)
		return nil

	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) password(given string) (string, error) {
	if given != "" {
		return given, nil
	}
	fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}

func (cli *commandLine) list(ctx context.Context, resource string, q models.ListQuery) error {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	defer w.Flush()

	switch resource {
	case "courses":
		courses, err := cli.executor.Courses().List(ctx, q)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tTITLE\tLEVEL\tPRICE")
		for _, c := range courses {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\n", c.ID, c.Title, c.Level, c.Price)
		}
	case "blogs":
		blogs, err := cli.executor.Blogs().List(ctx, q)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tTITLE\tAUTHOR")
		for _, b := range blogs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", b.ID, b.Title, b.Author)
		}
	case "events":
		events, err := cli.executor.Events().List(ctx, q)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tTITLE\tSTARTS")
		for _, e := range events {
			fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Title, e.StartsAt.Format(time.RFC3339))
		}
	case "users":
		users, err := cli.executor.Users().List(ctx, q)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tBLOCKED")
		for _, u := range users {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.Role, u.Blocked)
		}
	}
	return nil
}

func (cli *commandLine) printIdentity(id authflow.Identity) {
	if id.ID == "" && id.Email == "" {
		fmt.Fprintf(cli.out, "mode: %s\n", id.Mode)
		return
	}
	fmt.Fprintf(cli.out, "mode: %s\nname: %s\nemail: %s\nrole: %s\n", id.Mode, id.Name, id.Email, id.Role)
	if !id.ExpiresAt.IsZero() {
		state := "valid"
		if id.Expired {
			state = "expired"
		}
		fmt.Fprintf(cli.out, "token: %s until %s\n", state, id.ExpiresAt.Format(time.RFC3339))
	}
}
