package browseragent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"mailsweep/pkg/ai"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	DefaultMaxSteps = 15
	refAttr         = "data-sweep-ref"
	maxPageText     = 3000
	maxElements     = 60
)

// snapshotJS tags every visible interactive element with a numeric ref and
// returns a compact description of the page.
const snapshotJS = `(() => {
  const out = {url: location.href, title: document.title, text: "", elements: []};
  out.text = (document.body ? document.body.innerText : "").slice(0, 3000);
  const nodes = document.querySelectorAll('a, button, input, select, textarea, [role="button"], label');
  let ref = 0;
  for (const el of nodes) {
    const r = el.getBoundingClientRect();
    if (r.width === 0 && r.height === 0) continue;
    el.setAttribute('` + refAttr + `', String(ref));
    const item = {
      ref: ref,
      tag: el.tagName.toLowerCase(),
      type: el.getAttribute('type') || '',
      label: (el.innerText || el.value || el.getAttribute('aria-label') || el.getAttribute('placeholder') || el.name || '').trim().slice(0, 80),
      value: el.value || '',
      checked: !!el.checked,
      options: el.tagName === 'SELECT' ? Array.from(el.options).map(o => o.value) : []
    };
    out.elements.push(item);
    ref++;
    if (ref >= 60) break;
  }
  return out;
})()`

type pageElement struct {
	Ref     int      `json:"ref"`
	Tag     string   `json:"tag"`
	Type    string   `json:"type"`
	Label   string   `json:"label"`
	Value   string   `json:"value"`
	Checked bool     `json:"checked"`
	Options []string `json:"options"`
}

type pageSnapshot struct {
	URL      string        `json:"url"`
	Title    string        `json:"title"`
	Text     string        `json:"text"`
	Elements []pageElement `json:"elements"`
}

// Action is one step chosen by the planner.
type Action struct {
	Action  string `json:"action"` // navigate, click, type, select, check, wait, done
	Ref     *int   `json:"ref,omitempty"`
	Value   string `json:"value,omitempty"`
	Reason  string `json:"reason,omitempty"`
	Success bool   `json:"success,omitempty"`
}

type ChromeOptions struct {
	Headless bool
	MaxSteps int
	// ExecOptions are appended to chromedp's default allocator options
	ExecOptions []chromedp.ExecAllocatorOption
}

// ChromeAgent drives a local Chrome through chromedp, asking an LLM for one
// action per step.
type ChromeAgent struct {
	llm  ai.Completer
	opts ChromeOptions
	log  *zap.Logger
}

func NewChromeAgent(llm ai.Completer, opts ChromeOptions, log *zap.Logger) *ChromeAgent {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultMaxSteps
	}
	return &ChromeAgent{llm: llm, opts: opts, log: log.Named("browser")}
}

func (a *ChromeAgent) Run(ctx context.Context, task Task) (*Result, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("headless", a.opts.Headless))
	allocOpts = append(allocOpts, a.opts.ExecOptions...)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer cancelAlloc()
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var transcript strings.Builder
	fmt.Fprintf(&transcript, "task: %s\n", task.Instructions)

	if err := chromedp.Run(browserCtx, chromedp.Navigate(task.URL), chromedp.WaitReady("body")); err != nil {
		return nil, fmt.Errorf("open %s: %w", task.URL, err)
	}
	fmt.Fprintf(&transcript, "opened %s\n", task.URL)

	var history []string
	steps := 0
	for steps < a.opts.MaxSteps {
		steps++

		var snap pageSnapshot
		if err := chromedp.Run(browserCtx, chromedp.Evaluate(snapshotJS, &snap)); err != nil {
			return nil, fmt.Errorf("snapshot page: %w", err)
		}

		reply, err := a.llm.Complete(ctx, ai.Request{
			System:      plannerSystemPrompt,
			Prompt:      buildPlannerPrompt(task, snap, history),
			Temperature: 0,
			MaxTokens:   300,
			JSON:        true,
		})
		if err != nil {
			return nil, fmt.Errorf("plan step %d: %w", steps, err)
		}

		act, err := parseAction(reply)
		if err != nil {
			fmt.Fprintf(&transcript, "step %d: unreadable plan (%v)\n", steps, err)
			history = append(history, "invalid action reply")
			continue
		}

		line := describe(act)
		a.log.Debug("browser step", zap.Int("step", steps), zap.String("action", line))

		if act.Action == "done" {
			fmt.Fprintf(&transcript, "step %d: done success=%t reason=%s\n", steps, act.Success, act.Reason)
			fmt.Fprintf(&transcript, "final page: %s\n%s\n", snap.URL, truncate(snap.Text, 1000))
			return &Result{Transcript: transcript.String(), Steps: steps}, nil
		}

		if err := a.execute(browserCtx, act); err != nil {
			fmt.Fprintf(&transcript, "step %d: %s failed: %v\n", steps, line, err)
			history = append(history, line+" -> error: "+err.Error())
			continue
		}
		fmt.Fprintf(&transcript, "step %d: %s\n", steps, line)
		history = append(history, line)
	}

	var finalText, finalURL string
	_ = chromedp.Run(browserCtx, chromedp.Location(&finalURL), chromedp.Text("body", &finalText, chromedp.ByQuery))
	fmt.Fprintf(&transcript, "step budget exhausted after %d steps\nfinal page: %s\n%s\n", steps, finalURL, truncate(finalText, 1000))
	return &Result{Transcript: transcript.String(), Steps: steps}, nil
}

func (a *ChromeAgent) execute(ctx context.Context, act Action) error {
	stepCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	switch act.Action {
	case "navigate":
		return chromedp.Run(stepCtx, chromedp.Navigate(act.Value), chromedp.WaitReady("body"))
	case "wait":
		return chromedp.Run(stepCtx, chromedp.Sleep(2*time.Second))
	}

	if act.Ref == nil {
		return fmt.Errorf("%s needs an element ref", act.Action)
	}
	sel := fmt.Sprintf(`[%s="%d"]`, refAttr, *act.Ref)

	var tasks chromedp.Tasks
	switch act.Action {
	case "click", "check":
		tasks = chromedp.Tasks{chromedp.Click(sel, chromedp.ByQuery)}
	case "type":
		tasks = chromedp.Tasks{chromedp.Clear(sel, chromedp.ByQuery), chromedp.SendKeys(sel, act.Value, chromedp.ByQuery)}
	case "select":
		tasks = chromedp.Tasks{chromedp.SetValue(sel, act.Value, chromedp.ByQuery)}
	default:
		return fmt.Errorf("unknown action %q", act.Action)
	}
	tasks = append(tasks, chromedp.Sleep(500*time.Millisecond))
	return chromedp.Run(stepCtx, tasks)
}

const plannerSystemPrompt = `You control a web browser to complete a task. Reply with one JSON object describing the single next action:
{"action": "navigate|click|type|select|check|wait|done", "ref": <element ref>, "value": "<text, option value or url>", "reason": "<short>", "success": <true|false, only for done>}
Use "done" when the task is complete or cannot be completed.`

func buildPlannerPrompt(task Task, snap pageSnapshot, history []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Task:\n%s\n\n", task.Instructions)
	fmt.Fprintf(&b, "Current page: %s (%s)\n\n", snap.URL, snap.Title)
	fmt.Fprintf(&b, "Visible text:\n%s\n\n", truncate(snap.Text, maxPageText))
	b.WriteString("Interactive elements:\n")
	for i, el := range snap.Elements {
		if i >= maxElements {
			break
		}
		fmt.Fprintf(&b, "[%d] <%s", el.Ref, el.Tag)
		if el.Type != "" {
			fmt.Fprintf(&b, " type=%s", el.Type)
		}
		b.WriteString(">")
		if el.Label != "" {
			fmt.Fprintf(&b, " %q", el.Label)
		}
		if el.Value != "" {
			fmt.Fprintf(&b, " value=%q", el.Value)
		}
		if el.Checked {
			b.WriteString(" checked")
		}
		if len(el.Options) > 0 {
			fmt.Fprintf(&b, " options=%v", el.Options)
		}
		b.WriteString("\n")
	}
	if len(history) > 0 {
		b.WriteString("\nActions so far:\n")
		for i, h := range history {
			fmt.Fprintf(&b, "%d. %s\n", i+1, h)
		}
	}
	return b.String()
}

// parseAction reads the planner reply, tolerating markdown code fences.
func parseAction(reply string) (Action, error) {
	s := strings.TrimSpace(reply)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var act Action
	if err := json.Unmarshal([]byte(s), &act); err != nil {
		return Action{}, fmt.Errorf("decode action: %w", err)
	}
	act.Action = strings.ToLower(strings.TrimSpace(act.Action))
	switch act.Action {
	case "navigate", "click", "type", "select", "check", "wait", "done":
	default:
		return Action{}, fmt.Errorf("unknown action %q", act.Action)
	}
	return act, nil
}

func describe(act Action) string {
	parts := []string{act.Action}
	if act.Ref != nil {
		parts = append(parts, fmt.Sprintf("ref=%d", *act.Ref))
	}
	if act.Value != "" {
		parts = append(parts, fmt.Sprintf("value=%q", act.Value))
	}
	if act.Reason != "" {
		parts = append(parts, "("+act.Reason+")")
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
