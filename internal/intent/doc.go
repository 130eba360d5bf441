// Package intent classifies user messages into a closed intent set and
// extracts structured constraints from them.
//
// Classification cascades through three tiers: a primary LLM endpoint, a
// secondary LLM endpoint, and a keyword matcher that accepts any input. A
// tier failure of any kind (transport, malformed output, out-of-set intent)
// silently advances the cascade; the overall operation cannot fail. Whatever
// tier wins, the result is then enriched with regex-extracted price bounds,
// brand, rating floor, stock preference, discount floor, tags and
// refinement hints, all driven by hot-reloadable heuristics tables.
package intent
