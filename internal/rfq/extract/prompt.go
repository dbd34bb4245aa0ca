// internal/rfq/extract/prompt.go
package extract

import (
	"fmt"
	"strings"

	"gendra-backend/internal/rfq"
)

// systemPrompt defines the assistant role sent with every attempt.
const systemPrompt = `You are GendraRFQ, an expert manufacturing consultant specializing in extracting and structuring Request for Quote (RFQ) information with extreme precision.
Your task is to analyze manufacturing specifications and convert unstructured RFQ text into structured data.`

// instructionPrompt tells the model which fields to extract and how.
const instructionPrompt = `
Extract the following information from the RFQ text:

1. material (string): Precise material specification (e.g., "6061-T6 Aluminum", "304 Stainless Steel")
2. material_confidence (number): Your confidence in the material identification (0-1)
3. quantity (number): Exact number of units requested
4. dimensions (object): All measurements converted to millimeters (mm)
   - length: numeric value in mm
   - width: numeric value in mm
   - height: numeric value in mm
5. complexity (string): Manufacturing complexity categorized as "low", "medium", or "high"
6. deadline (string): Date in ISO format (YYYY-MM-DD)
7. industry (string): Must be one of: "metal fabrication", "injection molding", "cnc machining", "sheet metal", "electronics assembly"
8. industry_confidence (number): Your confidence in the industry classification (0-1)
9. finish (string or null): Surface finish requirements
10. tolerance (string or null): Tolerance specifications

IMPORTANT RULES:
- ALL dimensions MUST be in millimeters (mm). Convert from inches if needed (1 inch = 25.4 mm)
- If the industry is unclear, use contextual clues from materials and processes mentioned
- If any field is completely absent from the text, use null instead of guessing
- Format response as valid JSON with no additional text

Here are indicators for industry classification:
- metal fabrication: involves welding, bending, cutting sheet metal, forming, metal joining
- injection molding: involves plastic parts, molds, resins, cavities, gates, runners
- cnc machining: involves precision milling, turning, complex 3D shapes from solid blocks
- sheet metal: involves thin metal sheets, bending, punching, forming, enclosures
- electronics assembly: involves PCBs, components, soldering, connectors, circuitry

Here is the RFQ to analyze:
`

// fewShotExamples guide the model toward the expected output shape, including
// one deliberately ambiguous input.
const fewShotExamples = `Input RFQ:
"Need 50 brackets made from 6061 aluminum, 3" x 2" x 1", with 2 mounting holes. Due May 15."

Output:
{
  "material": "6061 Aluminum",
  "material_confidence": 0.95,
  "quantity": 50,
  "dimensions": {"length": 76.2, "width": 50.8, "height": 25.4},
  "complexity": "low",
  "deadline": "2023-05-15",
  "industry": "metal fabrication",
  "industry_confidence": 0.92,
  "finish": null,
  "tolerance": null
}

---

Input RFQ:
"We need a quote for 1000 plastic enclosures, ABS material, dimensions 150mm x 80mm x 30mm with snap-fit assembly. Surface finish must be matte black. Required by end of Q3."

Output:
{
  "material": "ABS Plastic",
  "material_confidence": 0.98,
  "quantity": 1000,
  "dimensions": {"length": 150, "width": 80, "height": 30},
  "complexity": "medium",
  "deadline": "2023-09-30",
  "industry": "injection molding",
  "industry_confidence": 0.94,
  "finish": "matte black",
  "tolerance": null
}

---

Input RFQ:
"RFQ for 25 steel enclosures, 304 stainless, 500mm x 300mm x 200mm, with cutouts for cable access. Brushed finish. Need ±0.1mm tolerance on critical dimensions. Delivery by January 2024."

Output:
{
  "material": "304 Stainless Steel",
  "material_confidence": 0.97,
  "quantity": 25,
  "dimensions": {"length": 500, "width": 300, "height": 200},
  "complexity": "medium",
  "deadline": "2024-01-31",
  "industry": "sheet metal",
  "industry_confidence": 0.89,
  "finish": "brushed",
  "tolerance": "±0.1mm"
}

---

Input RFQ:
"Looking for a supplier for our circuit board assembly. Need 500 units with 20 components each. Testing required. Initial samples by August 15th, and full delivery by October."

Output:
{
  "material": "PCB with components",
  "material_confidence": 0.85,
  "quantity": 500,
  "dimensions": {"length": 0, "width": 0, "height": 0},
  "complexity": "high",
  "deadline": "2023-10-31",
  "industry": "electronics assembly",
  "industry_confidence": 0.96,
  "finish": null,
  "tolerance": null
}`

// BuildPrompt assembles the user message for one extraction attempt. The same
// prompt is reused unchanged across every strategy in the cascade.
func BuildPrompt(input *Input) string {
	var contextInfo strings.Builder

	if fc := input.FileContext; fc != nil {
		contextInfo.WriteString("\nFile context:")
		if fc.Filename != "" {
			fmt.Fprintf(&contextInfo, "\n- Filename: %s", fc.Filename)
		}
		if fc.FileType != "" {
			fmt.Fprintf(&contextInfo, "\n- File type: %s", fc.FileType)
		}
		if fc.SheetName != "" {
			fmt.Fprintf(&contextInfo, "\n- Sheet name: %s", fc.SheetName)
		}
	}

	if uc := input.UserContext; uc != nil && rfq.IsValidIndustry(uc.PreferredIndustry) {
		fmt.Fprintf(&contextInfo, "\n\nNote: The user typically works in the %q industry.", uc.PreferredIndustry)
	}

	return fmt.Sprintf(
		"%s%s\n\n%s\n\nBefore responding, review these examples to ensure your output follows the same format:\n\n%s",
		instructionPrompt, contextInfo.String(), input.Text, fewShotExamples,
	)
}
