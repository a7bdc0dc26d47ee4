package llm

// Prompts for the two backend capabilities. Both force strict JSON so the
// responses survive DecodeStrictJSON.

const orderingSystemPrompt = `You align rows between two CSV exports of the same data produced by independent ETL implementations.
- The files carry the same records but the rows may be reordered and cells may differ in formatting.
- Do not invent or modify data. You only propose a row order.
- Respond with JSON only. No prose. No code fences.`

const orderingUserPromptTemplate = `SOURCE file (%d data rows, sample below):
%s

TARGET file (%d data rows, sample below):
%s

Propose the permutation that reorders the TARGET rows to match the SOURCE row sequence.
Match rows on shared values: look for key-like columns or unique value combinations, even when column names differ.
Row indices are zero-based positions in the TARGET file, header excluded.

Respond as JSON: {"order":[<target row index for output position 0>, ...],"confidence":0.0}
"order" must list every index 0..%d exactly once.`

const judgeSystemPrompt = `You evaluate proposed CSV row orderings against the source row sequence.
Score how well the proposed order makes target rows line up with their source counterparts: matching key fields, parallel sequence, consistent values.
Respond with JSON only. No prose. No code fences.`

const judgeUserPromptTemplate = `SOURCE file sample:
%s

TARGET file sample:
%s

Proposed target row order (first %d positions shown, zero-based target indices): %s
Proposed by backend %q with self-reported confidence %.2f.

Score the proposal in [0,1], higher is better.
Respond as JSON: {"score":0.0,"rationale":"one short sentence"}`

var orderingResponseSchema = []byte(`{
  "type": "object",
  "properties": {
    "order": {"type": "array", "items": {"type": "integer"}},
    "confidence": {"type": "number"}
  },
  "required": ["order"],
  "additionalProperties": false
}`)

var judgeResponseSchema = []byte(`{
  "type": "object",
  "properties": {
    "score": {"type": "number"},
    "rationale": {"type": "string"}
  },
  "required": ["score"],
  "additionalProperties": false
}`)
