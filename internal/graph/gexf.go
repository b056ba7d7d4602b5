package graph

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Node is one university pinned to the coordinates of its modal city.
type Node struct {
	University string
	Lat        float64
	Lng        float64
}

// Edge is a weighted directed transition between two universities.
type Edge struct {
	Source string
	Target string
	Weight int
}

// GEXF 1.2draft document layout, the subset Gephi reads.
type gexfDocument struct {
	XMLName        xml.Name  `xml:"gexf"`
	Namespace      string    `xml:"xmlns,attr"`
	SchemaInstance string    `xml:"xmlns:xsi,attr"`
	SchemaLocation string    `xml:"xsi:schemaLocation,attr"`
	Version        string    `xml:"version,attr"`
	Meta           gexfMeta  `xml:"meta"`
	Graph          gexfGraph `xml:"graph"`
}

type gexfMeta struct {
	LastModified string `xml:"lastmodifieddate,attr"`
	Creator      string `xml:"creator"`
}

type gexfGraph struct {
	DefaultEdgeType string         `xml:"defaultedgetype,attr"`
	Mode            string         `xml:"mode,attr"`
	Attributes      gexfAttributes `xml:"attributes"`
	Nodes           []gexfNode     `xml:"nodes>node"`
	Edges           []gexfEdge     `xml:"edges>edge"`
}

type gexfAttributes struct {
	Mode       string          `xml:"mode,attr"`
	Class      string          `xml:"class,attr"`
	Attributes []gexfAttribute `xml:"attribute"`
}

type gexfAttribute struct {
	ID    string `xml:"id,attr"`
	Title string `xml:"title,attr"`
	Type  string `xml:"type,attr"`
}

type gexfNode struct {
	ID     string         `xml:"id,attr"`
	Label  string         `xml:"label,attr"`
	Values []gexfAttValue `xml:"attvalues>attvalue"`
}

type gexfAttValue struct {
	For   string `xml:"for,attr"`
	Value string `xml:"value,attr"`
}

type gexfEdge struct {
	ID     string `xml:"id,attr"`
	Source string `xml:"source,attr"`
	Target string `xml:"target,attr"`
	Weight int    `xml:"weight,attr"`
}

const (
	gexfNamespace = "http://www.gexf.net/1.2draft"
	gexfSchema    = "http://www.gexf.net/1.2draft http://www.gexf.net/1.2draft/gexf.xsd"
	xsiNamespace  = "http://www.w3.org/2001/XMLSchema-instance"

	attrLat  = "0"
	attrLong = "1"
)

// writeGEXF publishes the network atomically, temp file then rename.
func writeGEXF(path string, nodes []Node, edges []Edge) error {
	doc := gexfDocument{
		Namespace:      gexfNamespace,
		SchemaInstance: xsiNamespace,
		SchemaLocation: gexfSchema,
		Version:        "1.2",
		Meta: gexfMeta{
			LastModified: time.Now().UTC().Format("2006-01-02"),
			Creator:      "orchard",
		},
		Graph: gexfGraph{
			DefaultEdgeType: "directed",
			Mode:            "static",
			Attributes: gexfAttributes{
				Mode:  "static",
				Class: "node",
				Attributes: []gexfAttribute{
					{ID: attrLat, Title: "lat", Type: "double"},
					{ID: attrLong, Title: "long", Type: "double"},
				},
			},
		},
	}

	doc.Graph.Nodes = make([]gexfNode, 0, len(nodes))
	for _, node := range nodes {
		doc.Graph.Nodes = append(doc.Graph.Nodes, gexfNode{
			ID:    node.University,
			Label: node.University,
			Values: []gexfAttValue{
				{For: attrLat, Value: formatCoordinate(node.Lat)},
				{For: attrLong, Value: formatCoordinate(node.Lng)},
			},
		})
	}

	doc.Graph.Edges = make([]gexfEdge, 0, len(edges))
	for i, edge := range edges {
		doc.Graph.Edges = append(doc.Graph.Edges, gexfEdge{
			ID:     strconv.Itoa(i),
			Source: edge.Source,
			Target: edge.Target,
			Weight: edge.Weight,
		})
	}

	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := encodeGEXF(file, &doc); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish %s: %w", path, err)
	}
	return nil
}

func encodeGEXF(file *os.File, doc *gexfDocument) error {
	if _, err := file.WriteString(xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(file)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	_, err := file.WriteString("\n")
	return err
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
