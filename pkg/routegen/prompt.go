package routegen

import (
	"fmt"
	"strconv"

	"github.com/aretw0/citywalk/pkg/domain"
	"github.com/aretw0/citywalk/pkg/ports"
)

// SystemInstruction is the persona sent with every request.
const SystemInstruction = "你是一位精通城市探索的本地向导和社交媒体博主（小红书风格）。你知道所有隐藏的宝藏店铺、拍照神位和热门路线。请用中文回答。"

const promptTemplate = `我现在的位置: 纬度 %s, 经度 %s.

请为我规划一条 "City Walk" 城市漫步路线。
主题/氛围: %s.
时长偏好: %s.

要求：
1. 路线应包含在社交媒体（小红书、抖音、Instagram）上热门的地点或隐藏的小众打卡点。
2. 包含 %d-%d 个具体的停留点，地点之间需要适合步行。
3. 每个地点请提供具体的“社交媒体打卡攻略”（比如怎么拍最好看，或者必点什么饮品）。
4. 所有返回内容必须使用中文（简体）。
5. 根据我的起始位置，模拟真实的附近地点坐标（步行距离内）。
`

// BuildPrompt renders the user instruction for a position and a preference selection.
func BuildPrompt(location domain.Coordinates, prefs domain.UserPreferences) string {
	return fmt.Sprintf(promptTemplate,
		strconv.FormatFloat(location.Latitude, 'f', -1, 64),
		strconv.FormatFloat(location.Longitude, 'f', -1, 64),
		prefs.Theme,
		prefs.Duration,
		domain.MinStops, domain.MaxStops,
	)
}

// BuildRequest assembles the complete completion request.
func BuildRequest(location domain.Coordinates, prefs domain.UserPreferences) ports.CompletionRequest {
	return ports.CompletionRequest{
		Prompt:            BuildPrompt(location, prefs),
		SystemInstruction: SystemInstruction,
		Schema:            RouteSchema(),
	}
}

// RouteSchema returns the structured-output schema of a WalkRoute.
// A fresh tree is returned on each call so adapters may annotate it freely.
func RouteSchema() *ports.Schema {
	minStops, maxStops := int64(domain.MinStops), int64(domain.MaxStops)

	coordinates := &ports.Schema{
		Type: "object",
		Properties: map[string]*ports.Schema{
			"latitude":  {Type: "number"},
			"longitude": {Type: "number"},
		},
		Required: []string{"latitude", "longitude"},
	}

	stop := &ports.Schema{
		Type: "object",
		Properties: map[string]*ports.Schema{
			"id":                   {Type: "string"},
			"name":                 {Type: "string"},
			"description":          {Type: "string"},
			"socialMediaTip":       {Type: "string", Description: "拍照或体验贴士 (例如 '转角处的路牌最好拍')"},
			"coordinates":          coordinates,
			"estimatedTimeMinutes": {Type: "number"},
			"tags":                 {Type: "array", Items: &ports.Schema{Type: "string"}},
		},
		Required: []string{"id", "name", "description", "socialMediaTip", "coordinates", "estimatedTimeMinutes", "tags"},
	}

	return &ports.Schema{
		Type: "object",
		Properties: map[string]*ports.Schema{
			"title":            {Type: "string", Description: "路线标题，类似小红书爆款标题"},
			"totalDistanceKm":  {Type: "string", Description: "总距离 (例如 '2.5 km')"},
			"totalTimeMinutes": {Type: "number", Description: "总时长 (分钟)"},
			"vibe":             {Type: "string", Description: "路线氛围关键词"},
			"stops": {
				Type:     "array",
				Items:    stop,
				MinItems: &minStops,
				MaxItems: &maxStops,
			},
		},
		Required: []string{"title", "totalDistanceKm", "totalTimeMinutes", "vibe", "stops"},
	}
}
