package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmcleod/authbox/client"
	"github.com/jmcleod/authbox/flow"
	"github.com/jmcleod/authbox/session"
)

var (
	baseURL      string
	verifyUser   string
	verifyPass   string
	verifyEmail  string
	verifyAnswer string
	pushFixtures bool
)

// tinySignature is a 1x1 transparent PNG, enough to exercise the
// signature path on a bench kiosk without a touchscreen.
const tinySignature = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Run one end-to-end verification against a server",
	Long: `Walks the full kiosk step sequence against a running server, supplying
scripted inputs where a person would normally interact. Intended as an
operator smoke test after installing or servicing a kiosk.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if pushFixtures {
			if err := pushBenchFixtures(ctx); err != nil {
				return fmt.Errorf("pushing fixtures: %w", err)
			}
			fmt.Println("Pushed bench camera frame and GPS fix")
		}

		st := session.NewStore()
		cfg := flow.DefaultConfig()
		cfg.Countdown = 0 // scripted run, nobody needs time to pose

		rt := flow.NewRuntime(st, client.New(baseURL, st), cfg, nil)
		ctrl := flow.NewController(rt)
		if err := ctrl.Enter(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "entering %s: %s\n", ctrl.Current(), ctrl.StepError())
		}

		creds := flow.NewCredentials(verifyUser, verifyPass)
		defer creds.Destroy()

		for ctrl.Current() != flow.StepResult {
			step := ctrl.Current()
			in, err := inputFor(step, creds)
			if err != nil {
				return err
			}
			fmt.Printf("[%s] ", step)
			if err := ctrl.Act(ctx, in); err != nil {
				fmt.Println("failed")
				return fmt.Errorf("step %s: %s", step, ctrl.StepError())
			}
			fmt.Println("ok")
		}

		fmt.Println("\nVerification complete:")
		for _, f := range flow.Summarize(st.Snapshot()) {
			mark := " "
			if f.Captured {
				mark = "x"
			}
			fmt.Printf("  [%s] %-12s %s\n", mark, f.Factor, f.Detail)
		}
		for _, line := range st.LogLines() {
			fmt.Println("  " + line)
		}
		return nil
	},
}

// inputFor supplies the scripted input each step would normally get from
// the person at the kiosk.
func inputFor(step flow.StepID, creds *flow.Credentials) (flow.Input, error) {
	switch step {
	case flow.StepLogin:
		return flow.Input{Credentials: creds}, nil
	case flow.StepChecklist:
		return flow.Input{Acknowledge: true}, nil
	case flow.StepOTP:
		return flow.Input{Answer: verifyAnswer}, nil
	case flow.StepSignature:
		return flow.Input{SignatureImage: tinySignature}, nil
	case flow.StepReview:
		return flow.Input{Consent: true}, nil
	case flow.StepEmail:
		return flow.Input{Email: verifyEmail, SkipEmail: verifyEmail == ""}, nil
	default:
		return flow.Input{}, nil
	}
}

// pushBenchFixtures seeds the server's uplink caches the way the ESP32
// devices would, so camera and GPS factors pass on a bench without them.
func pushBenchFixtures(ctx context.Context) error {
	frame := []byte("bench camera frame")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/upload_image", bytes.NewReader(frame))
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload_image returned %d", resp.StatusCode)
	}

	fix, err := json.Marshal(map[string]float64{"latitude": 37.5665, "longitude": 126.9780})
	if err != nil {
		return err
	}
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/upload_gps", bytes.NewReader(fix))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload_gps returned %d", resp.StatusCode)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&baseURL, "base-url", "http://localhost:5000", "Server to verify against")
	verifyCmd.Flags().StringVar(&verifyUser, "user", "0001", "Kiosk user id")
	verifyCmd.Flags().StringVar(&verifyPass, "password", "1111", "Kiosk user password")
	verifyCmd.Flags().StringVar(&verifyEmail, "email", "", "Notification address (empty skips mail)")
	verifyCmd.Flags().StringVar(&verifyAnswer, "answer", "B. Seoul", "Quiz answer to submit")
	verifyCmd.Flags().BoolVar(&pushFixtures, "push-fixtures", false, "Seed bench camera/GPS uplinks first")
}
