package transform

import "encoding/json"

// mindmapSchema is the JSON schema handed to the structured-output call.
// It mirrors mindmap.Node: a recursive node with title, question,
// description, keywords, and children.
var mindmapSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "title": {
      "type": "string",
      "description": "Icon + one space + 1-3 words. The document's actual subject, not a generic name."
    },
    "question": {
      "type": "string",
      "description": "A natural, conversational question a user would ask to learn more about this topic."
    },
    "description": {
      "type": "string",
      "description": "One sentence (max 200 chars) explaining what this topic covers."
    },
    "keywords": {
      "type": "array",
      "items": {"type": "string"},
      "description": "3-7 relevant keywords or key phrases, 1-3 words each."
    },
    "children": {
      "type": "array",
      "items": {"$ref": "#/$defs/node"},
      "description": "Child sections. Root has at most 8; every other node at most 5."
    }
  },
  "required": ["title", "question", "description", "keywords", "children"],
  "additionalProperties": false,
  "$defs": {
    "node": {
      "type": "object",
      "properties": {
        "title": {"type": "string"},
        "question": {"type": "string"},
        "description": {"type": "string"},
        "keywords": {"type": "array", "items": {"type": "string"}},
        "children": {"type": "array", "items": {"$ref": "#/$defs/node"}}
      },
      "required": ["title", "question", "description", "keywords", "children"],
      "additionalProperties": false
    }
  }
}`)
