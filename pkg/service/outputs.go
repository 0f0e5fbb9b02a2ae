package service

import (
	"github.com/sirupsen/logrus"

	"github.com/cosmograph/cosmograph/pkg/generators"
	"github.com/cosmograph/cosmograph/pkg/graph"
)

// OutputOptions selects which artifacts GenerateOutputs writes.
type OutputOptions struct {
	Dir      string
	HTMLOnly bool
	JSON     bool
}

// GenerateOutputs renders the graph into the requested artifacts. The
// HTML view is always written; the CSV tables are skipped in HTML-only
// mode and the JSON snapshot is opt-in.
func (s *ExtractionService) GenerateOutputs(g *graph.Graph, opts OutputOptions) error {
	log := s.logger.WithField("dir", opts.Dir)

	if !opts.HTMLOnly {
		if err := generators.WriteCSV(g, opts.Dir); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"nodes_file": generators.NodesFileName,
			"edges_file": generators.EdgesFileName,
		}).Info("Wrote CSV tables")
	}

	if err := generators.WriteHTML(g, opts.Dir); err != nil {
		return err
	}
	log.WithField("html_file", generators.HTMLFileName).Info("Wrote HTML view")

	if opts.JSON {
		if err := generators.WriteJSON(g, opts.Dir); err != nil {
			return err
		}
		log.WithField("json_file", generators.JSONFileName).Info("Wrote JSON snapshot")
	}

	return nil
}
