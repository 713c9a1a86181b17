package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// apiProfile mirrors internal/profile.Profile's JSON shape, duplicated
// here so the CLI has no compile-time dependency on server-side packages.
type apiProfile struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserDataDir string    `json:"user_data_dir"`
	ProxyServer string    `json:"proxy_server,omitempty"`
	Lang        string    `json:"lang,omitempty"`
	Timezone    string    `json:"timezone,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Color       string    `json:"color,omitempty"`
	CustomArgs  []string  `json:"custom_args,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	Headless    bool      `json:"headless"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type apiProcessRecord struct {
	ProfileID  string    `json:"profile_id"`
	PID        int       `json:"pid"`
	CDPPort    int       `json:"cdp_port"`
	LaunchedAt time.Time `json:"launched_at"`
	External   bool      `json:"external,omitempty"`
}

type apiProfileStatus struct {
	Running bool `json:"running"`
	PID     int  `json:"pid,omitempty"`
	CDPPort int  `json:"cdp_port,omitempty"`
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage browsion browser profiles",
}

var (
	profileAddName        string
	profileAddDescription string
	profileAddUserDataDir string
	profileAddProxy       string
	profileAddLang        string
	profileAddTimezone    string
	profileAddFingerprint string
	profileAddHeadless    bool
)

var profileAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new profile",
	RunE:  runProfileAdd,
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	RunE:  runProfileList,
}

var profileShowCmd = &cobra.Command{
	Use:   "show <profile-id>",
	Short: "Show a profile's details",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileShow,
}

var profileRemoveCmd = &cobra.Command{
	Use:     "rm <profile-id>",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runProfileRemove,
}

var profileLaunchCmd = &cobra.Command{
	Use:   "launch <profile-id>",
	Short: "Launch Chrome for a profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileLaunch,
}

var profileKillCmd = &cobra.Command{
	Use:   "kill <profile-id>",
	Short: "Terminate a profile's running Chrome process",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileKill,
}

var profileStatusCmd = &cobra.Command{
	Use:   "status <profile-id>",
	Short: "Show a profile's running status",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfileStatus,
}

func init() {
	profileAddCmd.Flags().StringVar(&profileAddName, "name", "", "Profile name (required)")
	profileAddCmd.Flags().StringVar(&profileAddDescription, "description", "", "Profile description")
	profileAddCmd.Flags().StringVar(&profileAddUserDataDir, "user-data-dir", "", "Chrome user-data-dir path")
	profileAddCmd.Flags().StringVar(&profileAddProxy, "proxy-server", "", "Proxy server, e.g. socks5://127.0.0.1:9050")
	profileAddCmd.Flags().StringVar(&profileAddLang, "lang", "en-US", "BCP-47 locale")
	profileAddCmd.Flags().StringVar(&profileAddTimezone, "timezone", "", "IANA timezone, e.g. America/New_York")
	profileAddCmd.Flags().StringVar(&profileAddFingerprint, "fingerprint", "", "Fingerprint override")
	profileAddCmd.Flags().BoolVar(&profileAddHeadless, "headless", false, "Launch headless by default")
	profileAddCmd.MarkFlagRequired("name")

	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	profileCmd.AddCommand(profileLaunchCmd)
	profileCmd.AddCommand(profileKillCmd)
	profileCmd.AddCommand(profileStatusCmd)
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	req := apiProfile{
		Name:        profileAddName,
		Description: profileAddDescription,
		UserDataDir: profileAddUserDataDir,
		ProxyServer: profileAddProxy,
		Lang:        profileAddLang,
		Timezone:    profileAddTimezone,
		Fingerprint: profileAddFingerprint,
		Headless:    profileAddHeadless,
	}
	client := newAPIClient()
	var created apiProfile
	if err := client.post("/api/profiles/", req, &created); err != nil {
		return outputError(fmt.Sprintf("create profile: %v", err))
	}
	return outputSuccess(created)
}

func runProfileList(cmd *cobra.Command, args []string) error {
	client := newAPIClient()
	var profiles []apiProfile
	if err := client.get("/api/profiles/", &profiles); err != nil {
		return outputError(fmt.Sprintf("list profiles: %v", err))
	}
	if JSONOutput {
		return outputSuccess(profiles)
	}
	if len(profiles) == 0 {
		fmt.Fprintln(os.Stdout, "No profiles.")
		return nil
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tHEADLESS\tTAGS")
	for _, p := range profiles {
		fmt.Fprintf(tw, "%s\t%s\t%v\t%v\n", p.ID, p.Name, p.Headless, p.Tags)
	}
	return tw.Flush()
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	client := newAPIClient()
	var p apiProfile
	if err := client.get("/api/profiles/"+args[0]+"/", &p); err != nil {
		return outputError(fmt.Sprintf("get profile: %v", err))
	}
	return outputSuccess(p)
}

func runProfileRemove(cmd *cobra.Command, args []string) error {
	client := newAPIClient()
	if err := client.delete("/api/profiles/"+args[0]+"/", nil); err != nil {
		return outputError(fmt.Sprintf("delete profile: %v", err))
	}
	return outputSuccess(nil)
}

func runProfileLaunch(cmd *cobra.Command, args []string) error {
	client := newAPIClient()
	var rec apiProcessRecord
	if err := client.post("/api/launch/"+args[0], nil, &rec); err != nil {
		return outputError(fmt.Sprintf("launch profile: %v", err))
	}
	return outputSuccess(rec)
}

func runProfileKill(cmd *cobra.Command, args []string) error {
	client := newAPIClient()
	if err := client.post("/api/kill/"+args[0], nil, nil); err != nil {
		return outputError(fmt.Sprintf("kill profile: %v", err))
	}
	return outputSuccess(nil)
}

func runProfileStatus(cmd *cobra.Command, args []string) error {
	client := newAPIClient()
	var running []apiProcessRecord
	if err := client.get("/api/running", &running); err != nil {
		return outputError(fmt.Sprintf("profile status: %v", err))
	}
	for _, rec := range running {
		if rec.ProfileID == args[0] {
			return outputSuccess(apiProfileStatus{Running: true, PID: rec.PID, CDPPort: rec.CDPPort})
		}
	}
	return outputSuccess(apiProfileStatus{Running: false})
}
