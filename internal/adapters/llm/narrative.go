package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/lcalzada-xor/steermap/internal/core/domain"
)

const systemPrompt = `You are a Wi-Fi band steering auditor. You receive the ` +
	`compliance table and raw counters of an 802.11 capture analysis. Write a ` +
	`concise technical report (3-5 paragraphs) for a network engineer: what ` +
	`the capture shows, whether band steering worked, and what to fix. Do not ` +
	`invent numbers that are not in the input.`

// Narrator generates the analysis_text field through the Anthropic API. It
// is best-effort by contract: callers tolerate every error and leave the
// field empty.
type Narrator struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewNarrator builds a narrator. Fails only on an empty API key.
func NewNarrator(apiKey, model string) (*Narrator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", domain.ErrNarrativeUnavailable)
	}
	return &Narrator{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}, nil
}

// Narrate produces the prose report for one finished analysis.
func (n *Narrator) Narrate(ctx context.Context, analysis *domain.BandSteeringAnalysis) (string, error) {
	msg, err := n.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     n.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildPrompt(analysis))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNarrativeUnavailable, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", domain.ErrNarrativeUnavailable)
	}
	return text, nil
}

// BuildPrompt renders the compliance table and counters as plain text. The
// model sees exactly what the artifact records, nothing more.
func BuildPrompt(analysis *domain.BandSteeringAnalysis) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Capture: %s\n", analysis.Filename)
	device := analysis.PrimaryDevice()
	if device.MAC != "" {
		fmt.Fprintf(&sb, "Client: %s (%s)\n", device.MAC, device.Vendor)
	}
	fmt.Fprintf(&sb, "Verdict: %s\n\n", analysis.Verdict)

	sb.WriteString("Compliance checks:\n")
	for _, c := range analysis.ComplianceChecks {
		status := "FAIL"
		if c.Passed {
			status = "PASS"
		}
		fmt.Fprintf(&sb, "- [%s] %s (%s, severity %s): %s\n",
			status, c.Name, c.Category, c.Severity, c.Details)
		if c.Recommendation != nil {
			fmt.Fprintf(&sb, "  recommendation: %s\n", *c.Recommendation)
		}
	}

	fmt.Fprintf(&sb, "\nCounters:\n")
	fmt.Fprintf(&sb, "- packets: %d total, %d wlan\n", analysis.TotalPackets, analysis.WLANPackets)
	fmt.Fprintf(&sb, "- BTM: %d requests, %d responses, success rate %.2f\n",
		analysis.BTMRequests, analysis.BTMResponses, analysis.BTMSuccessRate)
	fmt.Fprintf(&sb, "- transitions: %d successful, %d failed, %d loops\n",
		analysis.SuccessfulTransitions, analysis.FailedTransitions, analysis.LoopsDetected)
	fmt.Fprintf(&sb, "- roaming standards: 802.11k=%t 802.11v=%t 802.11r=%t\n",
		analysis.KVRSupport.K, analysis.KVRSupport.V, analysis.KVRSupport.R)
	fmt.Fprintf(&sb, "- bands: %d/%d beacons (2.4/5), %d/%d data frames (2.4/5)\n",
		analysis.RawStats.Bands.Beacons24, analysis.RawStats.Bands.Beacons5,
		analysis.RawStats.Bands.Data24, analysis.RawStats.Bands.Data5)

	if len(analysis.Transitions) > 0 {
		sb.WriteString("\nTransitions:\n")
		for _, tr := range analysis.Transitions {
			fmt.Fprintf(&sb, "- %s: %s (%s) -> %s (%s), %.2fs, band change %t\n",
				tr.Kind, tr.FromBSSID, tr.FromBand, tr.ToBSSID, tr.ToBand,
				tr.Duration, tr.IsBandChange)
		}
	}
	return sb.String()
}
