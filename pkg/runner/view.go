package runner

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/citywalk/pkg/domain"
)

// Commands accepted by the runner. Each view advertises the subset it accepts.
const (
	CmdStart    = "start"
	CmdTheme    = "theme"
	CmdDuration = "duration"
	CmdSubmit   = "submit"
	CmdNavigate = "navigate"
	CmdBack     = "back"
	CmdMap      = "map"
	CmdNext     = "next"
	CmdEnd      = "end"
	CmdDismiss  = "dismiss"
	CmdExit     = "exit"
)

// Action is one command offered by a view.
type Action struct {
	Key     string `json:"key"`
	Command string `json:"command"`
	Label   string `json:"label"`
	// Arg names the argument the command expects, if any.
	Arg string `json:"arg,omitempty"`
}

// View is the presentation of a snapshot: markdown content plus the commands it accepts.
type View struct {
	State    domain.AppState  `json:"state"`
	Finished bool             `json:"finished,omitempty"`
	Content  string           `json:"content"`
	Alert    *domain.Alert    `json:"alert,omitempty"`
	Actions  []Action         `json:"actions"`
	Snapshot *domain.Snapshot `json:"snapshot"`
}

// Loading labels shown while an external call is in flight.
const (
	LabelLocating   = "正在定位..."
	LabelGenerating = "正在生成路线..."
)

var exitAction = Action{Key: "q", Command: CmdExit, Label: "退出"}

// BuildView renders the snapshot for its active state.
func BuildView(snap *domain.Snapshot) View {
	v := View{State: snap.State, Alert: snap.Error, Snapshot: snap}

	switch snap.State {
	case domain.StateWelcome:
		v.Content = welcomeContent()
		v.Actions = []Action{{Key: "s", Command: CmdStart, Label: "开始探索"}}
	case domain.StatePreferences:
		v.Content = preferencesContent(snap)
		v.Actions = []Action{
			{Key: "t", Command: CmdTheme, Label: "漫步风格", Arg: "序号"},
			{Key: "d", Command: CmdDuration, Label: "预计时长", Arg: "序号"},
			{Key: "g", Command: CmdSubmit, Label: "生成路线"},
		}
	case domain.StatePreview:
		v.Content = RouteMarkdown(snap.Route)
		v.Actions = []Action{
			{Key: "n", Command: CmdNavigate, Label: "开始导航"},
			{Key: "b", Command: CmdBack, Label: "返回"},
		}
	case domain.StateNavigation:
		if stop, ok := snap.CurrentStop(); ok {
			v.Content = stopContent(stop, snap.Walk)
			v.Actions = []Action{
				{Key: "m", Command: CmdMap, Label: "打开地图"},
				{Key: "n", Command: CmdNext, Label: "下一站"},
				{Key: "x", Command: CmdEnd, Label: "结束"},
			}
		} else {
			v.Finished = true
			v.Content = finishedContent()
			v.Actions = []Action{{Key: "h", Command: CmdEnd, Label: "返回首页"}}
		}
	}

	if snap.Error != nil {
		v.Actions = append(v.Actions, Action{Key: "c", Command: CmdDismiss, Label: "关闭"})
	}
	v.Actions = append(v.Actions, exitAction)
	return v
}

// LoadingLabel returns the label for the external call a command triggers, if any.
func LoadingLabel(command string) string {
	switch command {
	case CmdStart:
		return LabelLocating
	case CmdSubmit:
		return LabelGenerating
	}
	return ""
}

func welcomeContent() string {
	return "# CityWalk 智行\n\n" +
		"结合社媒大数据，发现城市热门打卡地与隐秘角落，定制你的专属漫步路线。\n\n" +
		"> 需要获取您的地理位置权限以规划路线\n"
}

func preferencesContent(snap *domain.Snapshot) string {
	var b strings.Builder
	b.WriteString("# 规划路线\n\n今天想体验什么样的 City Walk？\n\n")
	if snap.Location != nil {
		fmt.Fprintf(&b, "当前位置: `%s`\n\n", snap.Location.String())
	}
	b.WriteString("## 漫步风格\n\n")
	writeCatalog(&b, domain.Themes, snap.Preferences.Theme)
	b.WriteString("\n## 预计时长\n\n")
	writeCatalog(&b, domain.Durations, snap.Preferences.Duration)
	return b.String()
}

func writeCatalog(b *strings.Builder, catalog []string, selected string) {
	found := false
	for i, label := range catalog {
		mark := ""
		if label == selected {
			mark = " ✓"
			found = true
		}
		fmt.Fprintf(b, "%d. %s%s\n", i+1, label, mark)
	}
	if !found && selected != "" {
		fmt.Fprintf(b, "- %s ✓\n", selected)
	}
}

// RouteMarkdown renders the route header and its numbered timeline.
func RouteMarkdown(route *domain.WalkRoute) string {
	if route == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n# %s\n\n%s • %s 分钟\n\n", route.Vibe, route.Title, route.TotalDistanceKm, minutes(route.TotalTimeMinutes))
	for i, stop := range route.Stops {
		fmt.Fprintf(&b, "%d. **%s**", i+1, stop.Name)
		if len(stop.Tags) > 0 {
			fmt.Fprintf(&b, " `%s`", stop.Tags[0])
		}
		b.WriteString("\n")
		if stop.Description != "" {
			fmt.Fprintf(&b, "   %s\n", stop.Description)
		}
		if stop.SocialMediaTip != "" {
			fmt.Fprintf(&b, "   > 打卡攻略: %s\n", stop.SocialMediaTip)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func stopContent(stop domain.WalkStop, walk *domain.WalkProgress) string {
	var b strings.Builder
	if walk != nil {
		fmt.Fprintf(&b, "当前站点 %d / %d\n\n", walk.Index+1, walk.Total)
	}
	fmt.Fprintf(&b, "# %s\n\n", stop.Name)
	if stop.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", stop.Description)
	}
	if stop.SocialMediaTip != "" {
		fmt.Fprintf(&b, "> 攻略: %s\n\n", stop.SocialMediaTip)
	}
	fmt.Fprintf(&b, "~%s 分钟停留\n", minutes(stop.EstimatedTimeMinutes))
	return b.String()
}

func finishedContent() string {
	return "# 抵达终点！\n\n路线已完成，希望你拍到了满意的照片！\n"
}

func minutes(m float64) string {
	return strconv.FormatFloat(m, 'f', -1, 64)
}
