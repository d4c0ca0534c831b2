package main

import (
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/remiblancher/jades-signer/internal/audit"
)

const testPayloadJSON = `{"sub":"urn:example:subject","iat":1709288130}`

// =============================================================================
// Sign Tests
// =============================================================================

func TestF_Sign(t *testing.T) {
	tests := []struct {
		name    string
		compact bool
	}{
		{"[Functional] Sign: PrettyOutput", false},
		{"[Functional] Sign: CompactOutput", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestContext(t)
			resetFlags()

			keystorePath := tc.setupKeystore()
			payloadPath := tc.writeFile("payload.json", testPayloadJSON)
			outputPath := tc.path("signed.json")

			args := []string{"sign",
				"--keystore", keystorePath,
				"--password-env", testPasswordEnv,
				"--payload", payloadPath,
				"--out", outputPath,
			}
			if tt.compact {
				args = append(args, "--compact")
			}

			output, err := executeCommand(rootCmd, args...)
			if err != nil {
				t.Fatalf("sign failed: %v", err)
			}
			if !strings.Contains(output, "CLI Test Signer") {
				t.Errorf("output does not name the signer: %q", output)
			}

			raw, err := os.ReadFile(outputPath)
			if err != nil {
				t.Fatalf("reading signed output: %v", err)
			}
			var envelope struct {
				Payload    string `json:"payload"`
				Signatures []struct {
					Protected string `json:"protected"`
					Signature string `json:"signature"`
				} `json:"signatures"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				t.Fatalf("output is not a JWS JSON object: %v", err)
			}
			if len(envelope.Signatures) != 1 {
				t.Errorf("signatures = %d, want 1", len(envelope.Signatures))
			}
		})
	}
}

func TestF_Sign_Stdout(t *testing.T) {
	tc := newTestContext(t)
	resetFlags()

	keystorePath := tc.setupKeystore()
	payloadPath := tc.writeFile("payload.json", testPayloadJSON)

	output, err := executeCommand(rootCmd, "sign",
		"--keystore", keystorePath,
		"--password-env", testPasswordEnv,
		"--payload", payloadPath,
		"--compact",
	)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}
	if !json.Valid([]byte(strings.TrimSpace(output))) {
		t.Errorf("stdout is not a JSON object: %q", output)
	}
}

func TestF_Sign_WithConfig(t *testing.T) {
	tc := newTestContext(t)
	resetFlags()

	keystorePath := tc.setupKeystore()
	payloadPath := tc.writeFile("payload.json", testPayloadJSON)
	configPath := tc.writeFile("jades.yaml",
		"keystore:\n  path: "+keystorePath+"\n  password_env: "+testPasswordEnv+"\n")

	_, err := executeCommand(rootCmd, "sign",
		"--config", configPath,
		"--payload", payloadPath,
		"--out", tc.path("signed.json"),
	)
	if err != nil {
		t.Fatalf("sign with config failed: %v", err)
	}
}

func TestF_Sign_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(tc *testContext) []string
	}{
		{
			"[Functional] Sign: MissingKeystoreFlag",
			func(tc *testContext) []string {
				payloadPath := tc.writeFile("payload.json", testPayloadJSON)
				return []string{"sign", "--payload", payloadPath}
			},
		},
		{
			"[Functional] Sign: PayloadNotJSON",
			func(tc *testContext) []string {
				keystorePath := tc.setupKeystore()
				payloadPath := tc.writeFile("payload.txt", "plain text, not JSON")
				return []string{"sign",
					"--keystore", keystorePath,
					"--password-env", testPasswordEnv,
					"--payload", payloadPath,
				}
			},
		},
		{
			"[Functional] Sign: PayloadFileMissing",
			func(tc *testContext) []string {
				keystorePath := tc.setupKeystore()
				return []string{"sign",
					"--keystore", keystorePath,
					"--password-env", testPasswordEnv,
					"--payload", tc.path("absent.json"),
				}
			},
		},
		{
			"[Functional] Sign: PasswordEnvUnset",
			func(tc *testContext) []string {
				keystorePath := tc.setupKeystore()
				payloadPath := tc.writeFile("payload.json", testPayloadJSON)
				tc.t.Setenv(testPasswordEnv, "")
				return []string{"sign",
					"--keystore", keystorePath,
					"--password-env", testPasswordEnv,
					"--payload", payloadPath,
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestContext(t)
			resetFlags()

			if _, err := executeCommand(rootCmd, tt.setup(tc)...); err == nil {
				t.Error("sign should have failed")
			}
		})
	}
}

func TestF_Sign_AuditLog(t *testing.T) {
	tc := newTestContext(t)
	resetFlags()

	keystorePath := tc.setupKeystore()
	payloadPath := tc.writeFile("payload.json", testPayloadJSON)
	auditPath := tc.path("audit.jsonl")

	_, err := executeCommand(rootCmd, "sign",
		"--keystore", keystorePath,
		"--password-env", testPasswordEnv,
		"--payload", payloadPath,
		"--out", tc.path("signed.json"),
		"--audit-log", auditPath,
	)
	if err != nil {
		t.Fatalf("sign failed: %v", err)
	}

	count, err := audit.VerifyChain(auditPath)
	if err != nil {
		t.Fatalf("audit chain broken: %v", err)
	}
	if count != 1 {
		t.Errorf("audit log holds %d events, want 1", count)
	}
}
