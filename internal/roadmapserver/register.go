// Package roadmapserver exposes the career graph, the skill-gap matcher and
// the roadmap generator as MCP tools.
package roadmapserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_roadmap/internal/engine/roadmap"
)

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 14

// RegisterTools registers all roadmap tools on the given MCP server.
func RegisterTools(server *mcp.Server, g *roadmap.Graph, gen *roadmap.Generator) {
	registerCareerList(server, g)
	registerCareerRoadmap(server, g)
	registerCareerRequiredSkills(server, g)
	registerCareerSearch(server, g)
	registerSkillGap(server, g)

	registerRoadmapGenerate(server, g, gen)
	registerCareerSuggest(server, gen)
	registerInterestsFind(server, gen)
	registerProjectPitch(server, g, gen)

	registerCareerAdd(server, g)
	registerMilestoneAdd(server, g)
	registerSkillAdd(server, g)
	registerSkillLink(server, g)
	registerCareerRemove(server, g)
}
