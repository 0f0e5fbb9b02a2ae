package generators

import (
	"bytes"
	"encoding/json"
	"html/template"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/cosmograph/cosmograph/pkg/graph"
)

// The HTML template for the D3.js force-directed view.
const d3Template = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>
    <script src="https://d3js.org/d3.v7.min.js"></script>
    <style>
        body {
            margin: 0;
            font-family: Arial, sans-serif;
        }
        #graph {
            width: 100%;
            height: 100vh;
            background-color: #f5f5f5;
        }
        .node {
            stroke: #fff;
            stroke-width: 1.5px;
        }
        .link {
            stroke: #999;
            stroke-opacity: 0.6;
        }
        .node-label {
            font-size: 10px;
            pointer-events: none;
        }
        .controls {
            position: absolute;
            top: 10px;
            left: 10px;
            background-color: rgba(255,255,255,0.8);
            padding: 10px;
            border-radius: 5px;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
        }
    </style>
</head>
<body>
    <div id="graph"></div>
    <div class="controls">
        <h3>{{.Title}}</h3>
        <p>Nodes: {{.NodeCount}}, Edges: {{.EdgeCount}}</p>
        <div>
            <label for="category-filter">Filter by category:</label>
            <select id="category-filter">
                <option value="all">All Categories</option>
            </select>
        </div>
    </div>

    <script>
        // Graph data
        const graphData = {{.GraphData}};

        // Dangling edges reference nodes the extraction never defined;
        // d3.forceLink cannot resolve those, so drop them from the view.
        const nodeIDs = new Set(graphData.nodes.map(node => node.id));
        const edges = graphData.edges.filter(e => nodeIDs.has(e.source) && nodeIDs.has(e.target));

        // Initialize the force simulation
        const simulation = d3.forceSimulation(graphData.nodes)
            .force("link", d3.forceLink(edges).id(d => d.id).distance(100))
            .force("charge", d3.forceManyBody().strength(-300))
            .force("center", d3.forceCenter(window.innerWidth / 2, window.innerHeight / 2));

        // Create SVG element
        const svg = d3.select("#graph")
            .append("svg")
            .attr("width", "100%")
            .attr("height", "100%")
            .call(d3.zoom().on("zoom", (event) => {
                g.attr("transform", event.transform);
            }));

        const g = svg.append("g");

        // Define node colors based on categories
        const categories = [...new Set(graphData.nodes.map(node => node.category))];
        const colorScale = d3.scaleOrdinal(d3.schemeCategory10).domain(categories);

        // Add categories to filter dropdown
        categories.forEach(category => {
            d3.select("#category-filter")
                .append("option")
                .attr("value", category)
                .text(category);
        });

        // Create links
        const link = g.append("g")
            .selectAll("line")
            .data(edges)
            .enter()
            .append("line")
            .attr("class", "link")
            .attr("stroke-width", 1.5);

        // Create nodes
        const node = g.append("g")
            .selectAll("circle")
            .data(graphData.nodes)
            .enter()
            .append("circle")
            .attr("class", "node")
            .attr("r", 8)
            .attr("fill", d => colorScale(d.category))
            .call(d3.drag()
                .on("start", dragstarted)
                .on("drag", dragged)
                .on("end", dragended));

        // Add labels to nodes
        const label = g.append("g")
            .selectAll("text")
            .data(graphData.nodes)
            .enter()
            .append("text")
            .attr("class", "node-label")
            .attr("dx", 12)
            .attr("dy", ".35em")
            .text(d => d.label);

        // Node tooltip
        node.append("title")
            .text(d => d.label + " (" + d.category + ")" + (d.description ? "\n" + d.description : ""));

        // Link tooltip
        link.append("title")
            .text(d => d.type);

        // Update positions on simulation tick
        simulation.on("tick", () => {
            link
                .attr("x1", d => d.source.x)
                .attr("y1", d => d.source.y)
                .attr("x2", d => d.target.x)
                .attr("y2", d => d.target.y);

            node
                .attr("cx", d => d.x)
                .attr("cy", d => d.y);

            label
                .attr("x", d => d.x)
                .attr("y", d => d.y);
        });

        // Category filter
        d3.select("#category-filter").on("change", function() {
            const selected = this.value;

            if (selected === "all") {
                node.style("visibility", "visible");
                link.style("visibility", "visible");
                label.style("visibility", "visible");
                return;
            }

            // Hide nodes that don't match the selected category
            node.style("visibility", d => d.category === selected ? "visible" : "hidden");

            // Hide labels for hidden nodes
            label.style("visibility", d => d.category === selected ? "visible" : "hidden");

            // Hide links that don't connect to visible nodes
            link.style("visibility", d => {
                const sourceVisible = d.source.category === selected;
                const targetVisible = d.target.category === selected;
                return sourceVisible || targetVisible ? "visible" : "hidden";
            });
        });

        // Drag functions
        function dragstarted(event, d) {
            if (!event.active) simulation.alphaTarget(0.3).restart();
            d.fx = d.x;
            d.fy = d.y;
        }

        function dragged(event, d) {
            d.fx = event.x;
            d.fy = event.y;
        }

        function dragended(event, d) {
            if (!event.active) simulation.alphaTarget(0);
            d.fx = null;
            d.fy = null;
        }
    </script>
</body>
</html>
`

const HTMLFileName = "knowledge_graph.html"

// WriteHTML renders the interactive D3.js view of the graph into dir.
// Labels and descriptions are display-truncated by the export snapshot.
func WriteHTML(g *graph.Graph, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	export := g.Export()
	graphData, err := json.Marshal(export)
	if err != nil {
		return errors.Wrap(err, "failed to marshal graph data")
	}

	tmpl, err := template.New("d3").Parse(d3Template)
	if err != nil {
		return errors.Wrap(err, "failed to parse visualization template")
	}

	title := g.Title
	if title == "" {
		title = "Knowledge Graph"
	}

	data := struct {
		GraphData template.JS
		Title     string
		NodeCount int
		EdgeCount int
	}{
		GraphData: template.JS(graphData),
		Title:     title,
		NodeCount: len(export.Nodes),
		EdgeCount: len(export.Edges),
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return errors.Wrap(err, "failed to render visualization")
	}

	path := filepath.Join(dir, HTMLFileName)
	return errors.Wrapf(os.WriteFile(path, buf.Bytes(), 0644), "failed to write %s", path)
}
